package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/services"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user := &types.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := h.authService.RegisterUser(c.Request.Context(), user); err != nil {
		h.log.Error("Register failed", "error", err, "email", req.Email)
		RespondError(c, http.StatusBadRequest, "register_failed", err)
		return
	}
	RespondOK(c, gin.H{"id": user.ID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	token, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "login_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"access_token": token,
		"expires_in":   int(h.authService.GetAccessTTL().Seconds()),
	})
}
