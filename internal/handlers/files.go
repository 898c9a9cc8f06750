package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/realtime"
	"github.com/docket-dev/docket/internal/services"
	"github.com/docket-dev/docket/internal/utils"
	"github.com/docket-dev/docket/internal/validation"
	"github.com/gin-gonic/gin"
)

// multipartOverhead covers form boundaries and the description field.
const multipartOverhead = 1 << 20

const maxDescriptionLength = 1000

type FileHandler struct {
	files  *services.FileService
	events Publisher
}

func NewFileHandler(files *services.FileService, events Publisher) *FileHandler {
	return &FileHandler{files: files, events: publisherOrNoop(events)}
}

func (h *FileHandler) Upload(ctx *gin.Context) {
	c, ok := scopedCase(ctx)

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, services.MaxUploadSize+multipartOverhead)

	header, err := ctx.FormFile("file")

	if err != nil {
		utils.RespondError(ctx, formFileError(err))
		return
	}

	if header.Size > services.MaxUploadSize {
		utils.RespondError(ctx, tooLarge())
		return
	}

	description := strings.TrimSpace(ctx.PostForm("description"))

	if len(description) > maxDescriptionLength {
		utils.RespondError(ctx, apperr.Validation("Validation failed", apperr.FieldError{
			Field:   "description",
			Message: "must be at most 1000 characters",
		}))
		return
	}

	body, err := header.Open()

	if err != nil {
		utils.RespondError(ctx, apperr.Internal(err))
		return
	}
	defer body.Close()

	file, err := h.files.Upload(ctx.Request.Context(), services.UploadInput{
		CaseID:       c.ID,
		OwnerID:      userID,
		FileName:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         body,
		Description:  description,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.events.Publish(c.ID, realtime.Event{Type: realtime.EventFileUploaded, CaseID: c.ID, ID: file.ID})
	utils.RespondData(ctx, http.StatusCreated, file)
}

func (h *FileHandler) List(ctx *gin.Context) {
	c, ok := scopedCase(ctx)

	if !ok {
		return
	}

	files, err := h.files.List(ctx.Request.Context(), c.ID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondList(ctx, files, len(files))
}

func (h *FileHandler) Get(ctx *gin.Context) {
	caseID, userID, fileID, ok := fileTarget(ctx)

	if !ok {
		return
	}

	file, err := h.files.Get(ctx.Request.Context(), caseID, fileID, userID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, file)
}

func (h *FileHandler) Delete(ctx *gin.Context) {
	caseID, userID, fileID, ok := fileTarget(ctx)

	if !ok {
		return
	}

	if err := h.files.Delete(ctx.Request.Context(), caseID, fileID, userID); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.events.Publish(caseID, realtime.Event{Type: realtime.EventFileDeleted, CaseID: caseID, ID: fileID})
	utils.RespondData(ctx, http.StatusOK, gin.H{})
}

func fileTarget(ctx *gin.Context) (string, string, string, bool) {
	c, ok := scopedCase(ctx)

	if !ok {
		return "", "", "", false
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated(err.Error()))
		return "", "", "", false
	}

	fileID, err := validation.ParamID(ctx, "fileId")

	if err != nil {
		utils.RespondError(ctx, err)
		return "", "", "", false
	}

	return c.ID, userID, fileID, true
}

func formFileError(err error) error {
	var maxErr *http.MaxBytesError

	if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
		return tooLarge()
	}

	return apperr.BadRequest("No file uploaded.")
}

func tooLarge() error {
	return apperr.Validation("File too large", apperr.FieldError{Field: "file", Message: "must not exceed 10 MB"})
}
