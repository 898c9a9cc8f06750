package handlers

import (
	"net/http"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/store"
	"github.com/docket-dev/docket/internal/utils"
	"github.com/docket-dev/docket/internal/validation"
	"github.com/gin-gonic/gin"
)

type CreateCaseRequest struct {
	Title       string `json:"title" binding:"required,min=3"`
	Description string `json:"description" binding:"required,min=10"`
	Status      string `json:"status" binding:"omitempty,case_status"`
	ClientID    string `json:"clientId" binding:"required,uuid"`
}

// UpdateCaseRequest has no clientId; a client reference in the body is
// ignored.
type UpdateCaseRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3"`
	Description *string `json:"description" binding:"omitempty,min=10"`
	Status      *string `json:"status" binding:"omitempty,case_status"`
}

type ListCasesQuery struct {
	ClientID string `form:"clientId" binding:"omitempty,uuid"`
}

type CaseHandler struct {
	cases *store.CaseStore
}

func NewCaseHandler(cases *store.CaseStore) *CaseHandler {
	return &CaseHandler{cases: cases}
}

func (h *CaseHandler) Create(ctx *gin.Context) {
	var req CreateCaseRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return
	}

	c, err := h.cases.Create(ctx.Request.Context(), userID, store.CaseInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.CaseStatus(req.Status),
		ClientID:    req.ClientID,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusCreated, c)
}

func (h *CaseHandler) List(ctx *gin.Context) {
	var query ListCasesQuery

	if err := validation.BindQuery(ctx, &query); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return
	}

	cases, err := h.cases.ListOwned(ctx.Request.Context(), userID, store.CaseFilter{ClientID: query.ClientID})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondList(ctx, cases, len(cases))
}

func (h *CaseHandler) Get(ctx *gin.Context) {
	userID, id, ok := ownedTarget(ctx, "caseId")

	if !ok {
		return
	}

	c, err := h.cases.FindOwned(ctx.Request.Context(), id, userID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, c)
}

func (h *CaseHandler) Update(ctx *gin.Context) {
	userID, id, ok := ownedTarget(ctx, "caseId")

	if !ok {
		return
	}

	var req UpdateCaseRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	patch := store.CasePatch{Title: req.Title, Description: req.Description}

	if req.Status != nil {
		status := models.CaseStatus(*req.Status)
		patch.Status = &status
	}

	c, err := h.cases.UpdateOwned(ctx.Request.Context(), id, userID, patch)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, c)
}

func (h *CaseHandler) Delete(ctx *gin.Context) {
	userID, id, ok := ownedTarget(ctx, "caseId")

	if !ok {
		return
	}

	if err := h.cases.DeleteOwned(ctx.Request.Context(), id, userID); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, gin.H{})
}
