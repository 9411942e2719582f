package session

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	"kirana/globals"
	"kirana/middleware"
	"kirana/utils"
)

type Handler struct {
	Gate *Gate
}

func NewHandler(gate *Gate) *Handler {
	return &Handler{Gate: gate}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login accepts any credentials and issues a token for the chosen role.
// Credentials are required but never checked against anything; the role
// label is the whole session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Please fill all fields")
		return
	}
	if req.Role == "" {
		req.Role = RoleUser
	}

	if err := h.Gate.Login(r.Context(), req.Role); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := &middleware.Claims{
		Username: req.Email,
		UserID:   globals.DefaultUserID,
		Role:     req.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.SendResponse(w, http.StatusOK, map[string]string{
		"token":  tokenString,
		"role":   req.Role,
		"userid": globals.DefaultUserID,
	}, "Login successful", nil)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.Gate.Logout(r.Context()); err != nil {
		log.Println("Logout error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Logged out", nil)
}

func (h *Handler) CurrentRole(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	role := h.Gate.CurrentRole()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"role":            role,
		"isAuthenticated": role != "",
	})
}
