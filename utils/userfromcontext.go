package utils

import (
	"net/http"

	"kirana/globals"
)

func GetUserIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	requestingUserID, ok := ctx.Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRoleFromRequest(r *http.Request) string {
	ctx := r.Context()
	role, ok := ctx.Value(globals.RoleKey).(string)
	if !ok {
		return ""
	}
	return role
}
