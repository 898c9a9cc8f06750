package handlers

import (
	"net/http"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/realtime"
	"github.com/docket-dev/docket/internal/store"
	"github.com/docket-dev/docket/internal/utils"
	"github.com/docket-dev/docket/internal/validation"
	"github.com/gin-gonic/gin"
)

type CreateAppointmentRequest struct {
	Time     string `json:"time" binding:"required,iso_datetime"`
	Location string `json:"location" binding:"required,min=3"`
	Notes    string `json:"notes" binding:"omitempty,max=2000"`
	Status   string `json:"status" binding:"omitempty,appointment_status"`
}

type UpdateAppointmentRequest struct {
	Time     *string `json:"time" binding:"omitempty,iso_datetime"`
	Location *string `json:"location" binding:"omitempty,min=3"`
	Notes    *string `json:"notes" binding:"omitempty,max=2000"`
	Status   *string `json:"status" binding:"omitempty,appointment_status"`
}

// AppointmentHandler serves appointments of the case resolved by the
// ownership middleware. Both the nested and the flat routes land here.
type AppointmentHandler struct {
	appointments *store.AppointmentStore
	events       Publisher
}

func NewAppointmentHandler(appointments *store.AppointmentStore, events Publisher) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, events: publisherOrNoop(events)}
}

func (h *AppointmentHandler) Create(ctx *gin.Context) {
	c, ok := scopedCase(ctx)

	if !ok {
		return
	}

	var req CreateAppointmentRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	at, err := validation.ParseTime(req.Time)

	if err != nil {
		utils.RespondError(ctx, apperr.Validation("Validation failed", apperr.FieldError{Field: "time", Message: "must be a valid ISO 8601 date"}))
		return
	}

	appt, err := h.appointments.Create(ctx.Request.Context(), c.ID, store.AppointmentInput{
		Time:     at,
		Location: req.Location,
		Notes:    req.Notes,
		Status:   models.AppointmentStatus(req.Status),
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.events.Publish(c.ID, realtime.Event{Type: realtime.EventAppointmentCreated, CaseID: c.ID, ID: appt.ID})
	utils.RespondData(ctx, http.StatusCreated, appt)
}

func (h *AppointmentHandler) List(ctx *gin.Context) {
	c, ok := scopedCase(ctx)

	if !ok {
		return
	}

	appts, err := h.appointments.ListForCase(ctx.Request.Context(), c.ID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondList(ctx, appts, len(appts))
}

func (h *AppointmentHandler) Get(ctx *gin.Context) {
	c, id, ok := h.target(ctx)

	if !ok {
		return
	}

	appt, err := h.appointments.FindInCase(ctx.Request.Context(), id, c.ID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, appt)
}

func (h *AppointmentHandler) Update(ctx *gin.Context) {
	c, id, ok := h.target(ctx)

	if !ok {
		return
	}

	var req UpdateAppointmentRequest

	if err := validation.BindJSON(ctx, &req); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	patch := store.AppointmentPatch{Location: req.Location, Notes: req.Notes}

	if req.Time != nil {
		at, err := validation.ParseTime(*req.Time)

		if err != nil {
			utils.RespondError(ctx, apperr.Validation("Validation failed", apperr.FieldError{Field: "time", Message: "must be a valid ISO 8601 date"}))
			return
		}

		patch.Time = &at
	}

	if req.Status != nil {
		status := models.AppointmentStatus(*req.Status)
		patch.Status = &status
	}

	appt, err := h.appointments.UpdateInCase(ctx.Request.Context(), id, c.ID, patch)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.events.Publish(c.ID, realtime.Event{Type: realtime.EventAppointmentUpdated, CaseID: c.ID, ID: appt.ID})
	utils.RespondData(ctx, http.StatusOK, appt)
}

func (h *AppointmentHandler) Delete(ctx *gin.Context) {
	c, id, ok := h.target(ctx)

	if !ok {
		return
	}

	if err := h.appointments.DeleteInCase(ctx.Request.Context(), id, c.ID); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	h.events.Publish(c.ID, realtime.Event{Type: realtime.EventAppointmentDeleted, CaseID: c.ID, ID: id})
	utils.RespondData(ctx, http.StatusOK, gin.H{})
}

// target returns the resolved case and the appointment id, taken from
// :appointmentId on nested routes and :id on flat ones.
func (h *AppointmentHandler) target(ctx *gin.Context) (*models.Case, string, bool) {
	c, ok := scopedCase(ctx)

	if !ok {
		return nil, "", false
	}

	param := "appointmentId"

	if ctx.Param(param) == "" {
		param = "id"
	}

	id, err := validation.ParamID(ctx, param)

	if err != nil {
		utils.RespondError(ctx, err)
		return nil, "", false
	}

	return c, id, true
}

func scopedCase(ctx *gin.Context) (*models.Case, bool) {
	c, err := utils.GetCurrentCase(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Internal(err))
		return nil, false
	}

	return c, true
}
