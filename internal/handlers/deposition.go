package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/services"
	"github.com/yungbote/igsnforms-backend/internal/types"
)

type DepositionHandler struct {
	log               *logger.Logger
	depositionService services.DepositionService
	authService       services.AuthService
}

func NewDepositionHandler(log *logger.Logger, depositionService services.DepositionService, authService services.AuthService) *DepositionHandler {
	return &DepositionHandler{
		log:               log.With("handler", "DepositionHandler"),
		depositionService: depositionService,
		authService:       authService,
	}
}

type depositionView struct {
	*types.Deposition
	DisplayName string `json:"display_name"`
}

func (h *DepositionHandler) List(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		user = nil
	}

	filter := repos.DepositionFilter{
		IGSNPrefix: c.Query("prefix"),
		Query:      c.Query("q"),
		Limit:      queryInt(c, "limit", 25),
		Offset:     queryInt(c, "offset", 0),
	}
	depositions, err := h.depositionService.List(c.Request.Context(), nil, filter, user, types.AccessRead)
	if err != nil {
		h.log.Error("List failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "list_depositions_failed", err)
		return
	}

	views := make([]depositionView, 0, len(depositions))
	for _, deposition := range depositions {
		views = append(views, depositionView{
			Deposition:  deposition,
			DisplayName: h.depositionService.DisplayName(deposition),
		})
	}
	RespondOK(c, gin.H{"depositions": views})
}

func (h *DepositionHandler) Get(c *gin.Context) {
	deposition, ok := h.loadAccessible(c, types.AccessRead)
	if !ok {
		return
	}
	RespondOK(c, depositionView{
		Deposition:  deposition,
		DisplayName: h.depositionService.DisplayName(deposition),
	})
}

func (h *DepositionHandler) Create(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req struct {
		Metadata map[string]interface{} `json:"metadata"`
		Prefix   string                 `json:"prefix"`
		IGSN     string                 `json:"igsn"`
		ParentID *uuid.UUID             `json:"parent_id"`
		Track    bool                   `json:"track"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	var parent *types.Deposition
	if req.ParentID != nil {
		parent, err = h.depositionService.GetByID(c.Request.Context(), nil, *req.ParentID)
		if err != nil {
			RespondError(c, http.StatusNotFound, "parent_not_found", err)
			return
		}
	}

	deposition, err := h.depositionService.CreateDeposition(c.Request.Context(), nil, services.CreateDepositionParams{
		Metadata: req.Metadata,
		Creator:  user,
		Prefix:   req.Prefix,
		IGSN:     req.IGSN,
		Parent:   parent,
		Track:    req.Track,
	})
	if err != nil {
		h.log.Error("Create failed", "error", err, "prefix", req.Prefix)
		RespondError(c, http.StatusBadRequest, "create_deposition_failed", err)
		return
	}
	RespondOK(c, deposition)
}

func (h *DepositionHandler) UpdateMetadata(c *gin.Context) {
	deposition, ok := h.loadAccessible(c, types.AccessWrite)
	if !ok {
		return
	}
	var req struct {
		Metadata map[string]interface{} `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	updated, err := h.depositionService.UpdateMetadata(c.Request.Context(), nil, deposition.ID, req.Metadata)
	if err != nil {
		h.log.Error("UpdateMetadata failed", "error", err, "igsn", deposition.IGSN)
		RespondError(c, http.StatusInternalServerError, "update_metadata_failed", err)
		return
	}
	RespondOK(c, updated)
}

func (h *DepositionHandler) GetAccess(c *gin.Context) {
	deposition, ok := h.loadAccessible(c, types.AccessAdmin)
	if !ok {
		return
	}
	RespondOK(c, gin.H{
		"access":       deposition.AccessList(),
		"public":       deposition.Public,
		"public_flags": deposition.PublicFlags,
	})
}

func (h *DepositionHandler) SetAccess(c *gin.Context) {
	deposition, ok := h.loadAccessible(c, types.AccessAdmin)
	if !ok {
		return
	}
	var req struct {
		Access      types.AccessList `json:"access"`
		Recursive   bool             `json:"recursive"`
		Public      *bool            `json:"public"`
		PublicFlags datatypes.JSON   `json:"public_flags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.depositionService.SetAccess(c.Request.Context(), nil, deposition.ID, req.Access, req.Recursive, req.Public, req.PublicFlags); err != nil {
		h.log.Error("SetAccess failed", "error", err, "igsn", deposition.IGSN)
		RespondError(c, http.StatusInternalServerError, "set_access_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

// loadAccessible resolves the :id path parameter (a deposition id or an
// IGSN) and enforces the given access level for the current user.
func (h *DepositionHandler) loadAccessible(c *gin.Context, level int) (*types.Deposition, bool) {
	raw := c.Param("id")

	var deposition *types.Deposition
	var err error
	if id, parseErr := uuid.Parse(raw); parseErr == nil {
		deposition, err = h.depositionService.GetByID(c.Request.Context(), nil, id)
	} else {
		deposition, err = h.depositionService.GetByIGSN(c.Request.Context(), nil, raw)
	}
	if err != nil {
		RespondError(c, http.StatusNotFound, "deposition_not_found", err)
		return nil, false
	}

	user, userErr := h.authService.CurrentUser(c.Request.Context())
	if userErr != nil {
		user = nil
	}
	if !depositionAccessible(deposition, user, level) {
		RespondError(c, http.StatusForbidden, "forbidden", nil)
		return nil, false
	}
	return deposition, true
}

func depositionAccessible(deposition *types.Deposition, user *types.User, level int) bool {
	if user != nil && user.Admin {
		return true
	}
	if deposition.Public && level <= types.AccessRead {
		return true
	}
	if user == nil {
		return false
	}
	return deposition.AccessList().LevelFor(user.ID) >= level
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
