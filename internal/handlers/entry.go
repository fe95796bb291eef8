package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/services"
)

type EntryHandler struct {
	log          *logger.Logger
	entryService services.EntryService
	authService  services.AuthService
}

func NewEntryHandler(log *logger.Logger, entryService services.EntryService, authService services.AuthService) *EntryHandler {
	return &EntryHandler{
		log:          log.With("handler", "EntryHandler"),
		entryService: entryService,
		authService:  authService,
	}
}

func (h *EntryHandler) Save(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form_id", err)
		return
	}
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	entry, err := h.entryService.SaveEntry(c.Request.Context(), nil, formID, data, user)
	if err != nil {
		h.log.Error("Save failed", "error", err, "form_id", formID)
		RespondError(c, http.StatusBadRequest, "save_entry_failed", err)
		return
	}
	RespondOK(c, entry)
}

func (h *EntryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_entry_id", err)
		return
	}
	entry, err := h.entryService.GetEntry(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "entry_not_found", err)
		return
	}
	RespondOK(c, entry)
}

func (h *EntryHandler) ListByForm(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form_id", err)
		return
	}
	entries, err := h.entryService.ListEntries(c.Request.Context(), nil, formID, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		h.log.Error("ListByForm failed", "error", err, "form_id", formID)
		RespondError(c, http.StatusInternalServerError, "list_entries_failed", err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_entry_id", err)
		return
	}
	if err := h.entryService.DeleteEntry(c.Request.Context(), nil, id); err != nil {
		h.log.Error("Delete failed", "error", err, "entry_id", id)
		RespondError(c, http.StatusInternalServerError, "delete_entry_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *EntryHandler) ListChangesets(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_entry_id", err)
		return
	}
	changesets, err := h.entryService.ListChangesets(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("ListChangesets failed", "error", err, "entry_id", id)
		RespondError(c, http.StatusInternalServerError, "list_changesets_failed", err)
		return
	}
	RespondOK(c, gin.H{"changesets": changesets})
}
