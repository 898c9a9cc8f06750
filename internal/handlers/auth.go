package handlers

import (
	"net/http"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/auth"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/store"
	"github.com/docket-dev/docket/internal/types"
	"github.com/docket-dev/docket/internal/utils"
	"github.com/docket-dev/docket/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    types.UserResponse `json:"user"`
}

type AuthHandler struct {
	users         *store.UserStore
	tokens        *auth.TokenService
	revoker       auth.Revoker
	defaultAvatar string
}

func NewAuthHandler(users *store.UserStore, tokens *auth.TokenService, revoker auth.Revoker, defaultAvatar string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, revoker: revoker, defaultAvatar: defaultAvatar}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	user, err := h.users.Create(ctx.Request.Context(), store.NewUser{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		AvatarURL: h.defaultAvatar,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	user, err := h.users.VerifyCredentials(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusOK, "Login successful", user)
}

// Logout revokes the presented token for the rest of its lifetime.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := utils.GetBearerToken(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return
	}

	if err := h.revoker.Revoke(ctx.Request.Context(), token.Raw, h.tokens.Remaining(token.Claims)); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondMessage(ctx, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.UserResponse(currentUser))
}

// BeginSocial redirects to the provider named in the path.
func (h *AuthHandler) BeginSocial(ctx *gin.Context) {
	if !withProvider(ctx) {
		return
	}

	gothic.BeginAuthHandler(ctx.Writer, ctx.Request)
}

func (h *AuthHandler) SocialCallback(ctx *gin.Context) {
	if !withProvider(ctx) {
		return
	}

	gothUser, err := gothic.CompleteUserAuth(ctx.Writer, ctx.Request)

	if err != nil {
		utils.Logger(ctx).Warn("social login failed", "provider", ctx.Param("provider"), "error", err)
		utils.RespondError(ctx, apperr.Unauthenticated("Social login failed"))
		return
	}

	user, err := h.users.UpsertSocial(ctx.Request.Context(), store.SocialProfile{
		Provider:       gothUser.Provider,
		ProviderUserID: gothUser.UserID,
		Email:          gothUser.Email,
		Name:           gothUser.Name,
		AvatarURL:      gothUser.AvatarURL,
	}, h.defaultAvatar)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusOK, "Login successful", user)
}

// withProvider copies the path provider into the query, where gothic
// looks for it.
func withProvider(ctx *gin.Context) bool {
	provider := ctx.Param("provider")

	if !auth.ProviderEnabled(provider) {
		utils.RespondError(ctx, apperr.Newf(apperr.KindBadRequest, "Social login with %q is not available", provider))
		return false
	}

	q := ctx.Request.URL.Query()
	q.Set("provider", provider)
	ctx.Request.URL.RawQuery = q.Encode()

	return true
}

func (h *AuthHandler) respondWithToken(ctx *gin.Context, status int, message string, user *models.User) {
	token, err := h.tokens.Generate(user.ID, user.Email)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(status, AuthResponse{
		Success: true,
		Message: message,
		Token:   token,
		User:    types.NewUserResponse(user),
	})
}
