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

type ContactInfoRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required,min=11"`
	Address string `json:"address"`
}

func (r *ContactInfoRequest) model() *models.ContactInfo {
	if r == nil {
		return nil
	}

	return &models.ContactInfo{Email: r.Email, Phone: r.Phone, Address: r.Address}
}

type CreateClientRequest struct {
	Name        string              `json:"name" binding:"required,min=2"`
	ContactInfo *ContactInfoRequest `json:"contactInfo" binding:"required"`
}

type UpdateClientRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=2"`
	ContactInfo *ContactInfoRequest `json:"contactInfo" binding:"omitempty"`
}

type ClientHandler struct {
	clients *store.ClientStore
}

func NewClientHandler(clients *store.ClientStore) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) Create(ctx *gin.Context) {
	var req CreateClientRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return
	}

	client, err := h.clients.Create(ctx.Request.Context(), userID, store.ClientInput{
		Name:        req.Name,
		ContactInfo: *req.ContactInfo.model(),
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusCreated, client)
}

func (h *ClientHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return
	}

	clients, err := h.clients.ListOwned(ctx.Request.Context(), userID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondList(ctx, clients, len(clients))
}

func (h *ClientHandler) Get(ctx *gin.Context) {
	userID, id, ok := ownedTarget(ctx, "id")

	if !ok {
		return
	}

	client, err := h.clients.FindOwned(ctx.Request.Context(), id, userID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, client)
}

func (h *ClientHandler) Update(ctx *gin.Context) {
	userID, id, ok := ownedTarget(ctx, "id")

	if !ok {
		return
	}

	var req UpdateClientRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	client, err := h.clients.UpdateOwned(ctx.Request.Context(), id, userID, store.ClientPatch{
		Name:        req.Name,
		ContactInfo: req.ContactInfo.model(),
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, client)
}

func (h *ClientHandler) Delete(ctx *gin.Context) {
	userID, id, ok := ownedTarget(ctx, "id")

	if !ok {
		return
	}

	if err := h.clients.DeleteOwned(ctx.Request.Context(), id, userID); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, gin.H{})
}

// ownedTarget returns the current user id and the validated path id.
// It writes the error response itself and reports false on failure.
func ownedTarget(ctx *gin.Context, param string) (string, string, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return "", "", false
	}

	id, err := validation.ParamID(ctx, param)

	if err != nil {
		utils.RespondError(ctx, err)
		return "", "", false
	}

	return userID, id, true
}
