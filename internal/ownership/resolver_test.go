package ownership

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/store"
	"github.com/docket-dev/docket/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	resolver    *Resolver
	owner       *models.User
	stranger    *models.User
	kase        *models.Case
	appointment *models.Appointment
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn := testutil.NewDB(t)
	stores := store.New(conn)

	owner := testutil.CreateUser(t, conn, "owner@example.com")
	stranger := testutil.CreateUser(t, conn, "stranger@example.com")
	client := testutil.CreateClient(t, conn, owner.ID)
	kase := testutil.CreateCase(t, conn, owner.ID, client.ID)

	appointment, err := stores.Appointments.Create(context.Background(), kase.ID, store.AppointmentInput{Time: time.Now().Add(time.Hour), Location: "Chambers"})
	require.NoError(t, err)

	return fixture{
		resolver:    NewResolver(stores.Cases, DefaultRules(stores.Appointments)...),
		owner:       owner,
		stranger:    stranger,
		kase:        kase,
		appointment: appointment,
	}
}

func params(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func TestResolveDirectCaseID(t *testing.T) {
	f := newFixture(t)

	c, err := f.resolver.Resolve(context.Background(), params(map[string]string{"caseId": f.kase.ID}), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.kase.ID, c.ID)
}

func TestResolveThroughAppointment(t *testing.T) {
	f := newFixture(t)

	c, err := f.resolver.Resolve(context.Background(), params(map[string]string{"id": f.appointment.ID}), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.kase.ID, c.ID)
}

func TestResolveCaseIDTakesPrecedence(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), params(map[string]string{
		"caseId": "00000000-0000-0000-0000-000000000001",
		"id":     f.appointment.ID,
	}), f.owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestResolveForbiddenForNonOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), params(map[string]string{"caseId": f.kase.ID}), f.stranger.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.resolver.Resolve(context.Background(), params(map[string]string{"id": f.appointment.ID}), f.stranger.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestResolveUndeterminedCase(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), params(nil), f.owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = f.resolver.Resolve(context.Background(), params(map[string]string{"id": "00000000-0000-0000-0000-000000000002"}), f.owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestResolveMissingCase(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), params(map[string]string{"caseId": "00000000-0000-0000-0000-000000000003"}), f.owner.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "00000000-0000-0000-0000-000000000003")
}

func TestResolveMalformedID(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), params(map[string]string{"caseId": "not-a-uuid"}), f.owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestExtraRuleIsData(t *testing.T) {
	f := newFixture(t)

	fileLookup := func(ctx context.Context, id string) (string, error) {
		if id == "11111111-1111-1111-1111-111111111111" {
			return f.kase.ID, nil
		}
		return "", apperr.NotFound("File not found.")
	}

	r := NewResolver(f.resolver.cases, append(f.resolver.rules, Rule{Param: "fileId", Lookup: fileLookup})...)

	c, err := r.Resolve(context.Background(), params(map[string]string{"fileId": "11111111-1111-1111-1111-111111111111"}), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.kase.ID, c.ID)
}

type failingCases struct{}

func (failingCases) FindByID(context.Context, string) (*models.Case, error) {
	return nil, errors.New("connection refused")
}

func TestResolveStoreFailureIsInternal(t *testing.T) {
	r := NewResolver(failingCases{}, Rule{Param: "caseId"})

	_, err := r.Resolve(context.Background(), params(map[string]string{"caseId": "00000000-0000-0000-0000-000000000004"}), "u")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
