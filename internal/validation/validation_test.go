package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

type contact struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,min=11"`
}

type sample struct {
	Title   string   `json:"title" binding:"required,min=3"`
	Status  string   `json:"status" binding:"omitempty,case_status"`
	When    string   `json:"time" binding:"omitempty,iso_datetime"`
	Contact *contact `json:"contactInfo" binding:"required"`
	Count   int      `json:"count"`
}

func bind(t *testing.T, body string) error {
	t.Helper()

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")

	var s sample
	return BindJSON(ctx, &s)
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()

	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.KindValidation))

	out := map[string]string{}
	for _, f := range apperr.From(err).Fields {
		out[f.Field] = f.Message
	}

	return out
}

func TestBindJSONValid(t *testing.T) {
	err := bind(t, `{"title":"Estate","status":"In Progress","time":"2026-03-01T09:30:00.000Z","contactInfo":{"email":"a@b.co","phone":"+1555123456789"}}`)
	assert.NoError(t, err)
}

func TestBindJSONFieldViolations(t *testing.T) {
	got := fields(t, bind(t, `{"title":"ab","status":"Archived","time":"tomorrow","contactInfo":{"email":"nope","phone":"123"}}`))

	assert.Equal(t, "must be at least 3 characters", got["title"])
	assert.Contains(t, got["status"], "In Progress")
	assert.Contains(t, got["time"], "ISO 8601")
	assert.Equal(t, "must be a valid email address", got["contactInfo.email"])
	assert.Equal(t, "must be at least 11 characters", got["contactInfo.phone"])
}

func TestBindJSONMissingNested(t *testing.T) {
	got := fields(t, bind(t, `{"title":"Estate"}`))
	assert.Equal(t, "is required", got["contactInfo"])
}

func TestBindJSONTypeMismatch(t *testing.T) {
	got := fields(t, bind(t, `{"title":"Estate","count":"three","contactInfo":{"email":"a@b.co","phone":"+1555123456789"}}`))
	assert.Equal(t, "must be of type number", got["count"])
}

func TestBindJSONMalformedAndEmpty(t *testing.T) {
	err := bind(t, `{"title":`)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = bind(t, ``)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCheckID(t *testing.T) {
	assert.NoError(t, CheckID("id", "6f1c7a52-3d4e-4b8a-9f0e-1a2b3c4d5e6f"))

	got := fields(t, CheckID("caseId", "123"))
	assert.Equal(t, "Invalid ID format", got["caseId"])
}
