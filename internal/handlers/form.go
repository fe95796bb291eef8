package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/services"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type FormHandler struct {
	log         *logger.Logger
	formService services.FormService
	authService services.AuthService
}

func NewFormHandler(log *logger.Logger, formService services.FormService, authService services.AuthService) *FormHandler {
	return &FormHandler{
		log:         log.With("handler", "FormHandler"),
		formService: formService,
		authService: authService,
	}
}

type formRequest struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Schema        datatypes.JSON `json:"schema"`
	UniqueField   string         `json:"unique_field"`
	EntryFileName string         `json:"entry_file_name"`
	PathTemplate  string         `json:"path_template"`
	DriveFolderID string         `json:"drive_folder_id"`
}

func (h *FormHandler) Create(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req formRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	form := &types.Form{
		Name:          req.Name,
		Description:   req.Description,
		Schema:        req.Schema,
		UniqueField:   req.UniqueField,
		EntryFileName: req.EntryFileName,
		PathTemplate:  req.PathTemplate,
		DriveFolderID: req.DriveFolderID,
		CreatorID:     user.ID,
	}
	created, err := h.formService.CreateForm(c.Request.Context(), nil, form)
	if err != nil {
		h.log.Error("Create failed", "error", err, "name", req.Name)
		RespondError(c, http.StatusBadRequest, "create_form_failed", err)
		return
	}
	RespondOK(c, created)
}

func (h *FormHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form_id", err)
		return
	}
	form, err := h.formService.GetForm(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "form_not_found", err)
		return
	}
	RespondOK(c, form)
}

func (h *FormHandler) GetSchema(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form_id", err)
		return
	}
	form, err := h.formService.GetForm(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "form_not_found", err)
		return
	}
	c.Data(http.StatusOK, "application/json", form.Schema)
}

func (h *FormHandler) List(c *gin.Context) {
	forms, err := h.formService.ListForms(c.Request.Context(), nil, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		h.log.Error("List failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "list_forms_failed", err)
		return
	}
	RespondOK(c, gin.H{"forms": forms})
}

func (h *FormHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form_id", err)
		return
	}
	form, err := h.formService.GetForm(c.Request.Context(), nil, id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "form_not_found", err)
		return
	}
	var req formRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	form.Name = req.Name
	form.Description = req.Description
	form.Schema = req.Schema
	form.UniqueField = req.UniqueField
	form.EntryFileName = req.EntryFileName
	form.PathTemplate = req.PathTemplate
	form.DriveFolderID = req.DriveFolderID

	updated, err := h.formService.UpdateForm(c.Request.Context(), nil, form)
	if err != nil {
		h.log.Error("Update failed", "error", err, "form_id", id)
		RespondError(c, http.StatusInternalServerError, "update_form_failed", err)
		return
	}
	RespondOK(c, updated)
}

func (h *FormHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form_id", err)
		return
	}
	if err := h.formService.DeleteForm(c.Request.Context(), nil, id); err != nil {
		h.log.Error("Delete failed", "error", err, "form_id", id)
		RespondError(c, http.StatusInternalServerError, "delete_form_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
