package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"kirana/globals"
	"kirana/utils"
)

func signedToken(t *testing.T, role string) string {
	t.Helper()
	claims := &Claims{
		Username: "asha@example.com",
		UserID:   globals.DefaultUserID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return token
}

func TestValidateJWTRoundTripsClaims(t *testing.T) {
	claims, err := ValidateJWT(signedToken(t, "ADMIN"))
	require.NoError(t, err)
	require.Equal(t, globals.DefaultUserID, claims.UserID)
	require.Equal(t, "ADMIN", claims.Role)
}

func TestValidateJWTRejectsMalformedToken(t *testing.T) {
	// a short opaque string must fail verification, not be sliced apart
	_, err := ValidateJWT("12345678")
	require.Error(t, err)

	_, err = ValidateJWT("")
	require.Error(t, err)

	// tampering with a valid token invalidates the signature
	tampered := signedToken(t, "USER") + "x"
	_, err = ValidateJWT(tampered)
	require.Error(t, err)
}

func TestAuthenticatePopulatesContext(t *testing.T) {
	var gotUser, gotRole string
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser = utils.GetUserIDFromRequest(r)
		gotRole = utils.GetRoleFromRequest(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "USER"))
	rec := httptest.NewRecorder()
	handler(rec, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, globals.DefaultUserID, gotUser)
	require.Equal(t, "USER", gotRole)
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler must not run without a valid token")
	})

	for _, header := range []string{"", "Token abc", "12345678", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler(rec, req, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireRoleForbidsMismatch(t *testing.T) {
	handler := Authenticate(RequireRole("ADMIN", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "USER"))
	rec := httptest.NewRecorder()
	handler(rec, req, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "ADMIN"))
	rec = httptest.NewRecorder()
	handler(rec, req, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
