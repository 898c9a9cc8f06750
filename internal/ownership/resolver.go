// Package ownership decides which case a nested request addresses and
// whether the caller owns it.
package ownership

import (
	"context"
	"fmt"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/docket-dev/docket/internal/validation"
)

const (
	msgCaseUndetermined = "Case ID is missing or could not be determined from the request."
	msgNotCaseOwner     = "You are not authorized to access resources for this case."
)

// Lookup maps a child resource id to the id of its case.
type Lookup func(ctx context.Context, id string) (string, error)

// Rule says how to get a case id from one path parameter. A nil Lookup
// means the parameter already is the case id.
type Rule struct {
	Param  string
	Lookup Lookup
}

type CaseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Case, error)
}

type AppointmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
}

type Resolver struct {
	cases CaseFinder
	rules []Rule
}

// NewResolver evaluates rules in order; the first parameter present wins.
func NewResolver(cases CaseFinder, rules ...Rule) *Resolver {
	return &Resolver{cases: cases, rules: rules}
}

// DefaultRules resolves caseId directly and falls back to walking from
// an appointment id. Files are not part of the table.
func DefaultRules(appointments AppointmentFinder) []Rule {
	return []Rule{
		{Param: "caseId"},
		{Param: "id", Lookup: AppointmentLookup(appointments)},
	}
}

func AppointmentLookup(appointments AppointmentFinder) Lookup {
	return func(ctx context.Context, id string) (string, error) {
		a, err := appointments.FindByID(ctx, id)

		if err != nil {
			return "", err
		}

		return a.CaseID, nil
	}
}

// Resolve returns the case addressed by params when userID owns it.
// params returns "" for absent parameters.
func (r *Resolver) Resolve(ctx context.Context, params func(string) string, userID string) (*models.Case, error) {
	caseID, err := r.caseID(ctx, params)

	if err != nil {
		return nil, err
	}

	c, err := r.cases.FindByID(ctx, caseID)

	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Case with ID %s not found.", caseID))
		}

		return nil, fmt.Errorf("resolving case: %w", err)
	}

	if c.OwnerID != userID {
		return nil, apperr.Forbidden(msgNotCaseOwner)
	}

	return c, nil
}

func (r *Resolver) caseID(ctx context.Context, params func(string) string) (string, error) {
	for _, rule := range r.rules {
		value := params(rule.Param)

		if value == "" {
			continue
		}

		if err := validation.CheckID(rule.Param, value); err != nil {
			return "", err
		}

		if rule.Lookup == nil {
			return value, nil
		}

		caseID, err := rule.Lookup(ctx, value)

		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return "", apperr.BadRequest(msgCaseUndetermined)
			}

			return "", fmt.Errorf("looking up %s: %w", rule.Param, err)
		}

		if caseID == "" {
			break
		}

		return caseID, nil
	}

	return "", apperr.BadRequest(msgCaseUndetermined)
}
