package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/services"
)

type SettingHandler struct {
	log             *logger.Logger
	settingsService services.SettingsService
	authService     services.AuthService
}

func NewSettingHandler(log *logger.Logger, settingsService services.SettingsService, authService services.AuthService) *SettingHandler {
	return &SettingHandler{
		log:             log.With("handler", "SettingHandler"),
		settingsService: settingsService,
		authService:     authService,
	}
}

func (h *SettingHandler) GetVocabulary(c *gin.Context) {
	vocab, err := h.settingsService.GetVocabulary(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("GetVocabulary failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_vocabulary_failed", err)
		return
	}
	RespondOK(c, vocab)
}

func (h *SettingHandler) SetInstitutions(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var institutions map[string]igsn.Institution
	if err := c.ShouldBindJSON(&institutions); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.settingsService.SetInstitutions(c.Request.Context(), nil, institutions); err != nil {
		h.log.Error("SetInstitutions failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "set_institutions_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

func (h *SettingHandler) SetMaterials(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var materials map[string]igsn.Material
	if err := c.ShouldBindJSON(&materials); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.settingsService.SetMaterials(c.Request.Context(), nil, materials); err != nil {
		h.log.Error("SetMaterials failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "set_materials_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

func (h *SettingHandler) requireAdmin(c *gin.Context) bool {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil || !user.Admin {
		RespondError(c, http.StatusForbidden, "admin_required", nil)
		return false
	}
	return true
}
