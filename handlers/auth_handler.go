package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/services"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   string
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

// Register godoc
// @Summary      Register a new player
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      services.RegisterInput  true  "Registration data"
// @Success      201    {object}  map[string]interface{}
// @Failure      409    {object}  map[string]interface{}
// @Failure      422    {object}  map[string]interface{}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"user": user})
}

// Login godoc
// @Summary      Log in and receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      services.LoginInput  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user, tokenTTL)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{
		"token":      token,
		"expires_in": int(tokenTTL.Seconds()),
		"user":       user,
	})
}
