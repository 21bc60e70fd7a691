// Package typology injects labelled money-laundering scenarios into a population.
//
// Every injector is a pure function of its inputs: it reads the user
// population, draws from the stream it is handed and returns the transactions
// and alerts of its scenario. Injectors never touch shared state; the
// orchestrator owns the single accumulation point.
//
// Timing inside a scenario is derived from the injector's Span: sampled legs
// fall in the early part of the span, follow-up legs and alerts in the tail.
// A span of window.MinSpanDays or more always leaves room for both, so an
// alert is strictly after the transactions that triggered it and still inside
// the generation window.
package typology

import (
	"fmt"
	"time"

	"amlgen/internal/generator/models"
	"amlgen/internal/generator/random"
	"amlgen/internal/generator/window"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
)

// Scope is what the orchestrator hands every injector besides the population.
type Scope struct {
	Span     window.Span
	Currency string
}

// Injection is the output of one scenario.
type Injection struct {
	Transactions []models.Transaction
	Alerts       []models.Alert
	// Subject is the account the scenario revolves around: the smurf, the ring
	// controller or the false-positive user.
	Subject id.UserID
}

// Injector produces one scenario.
type Injector interface {
	// Name is the injector's schedule key.
	Name() string
	// Validate checks the injector's configuration before any run.
	Validate() error
	Inject(users []models.User, scope Scope, rng *random.Source) (Injection, error)
}

const txnIDHexLen = 8

func newAlert(rng *random.Source, user id.UserID, reason models.TriggerReason, severity models.Severity, createdAt time.Time) models.Alert {
	return models.Alert{
		ID:        id.AlertID(rng.UUID().String()),
		UserID:    user,
		Reason:    reason,
		Status:    models.AlertStatusNew,
		CreatedAt: createdAt,
		Severity:  severity,
	}
}

func requireUsers(users []models.User, need int, what string) error {
	if len(users) < need {
		return dErrors.New(dErrors.CodeInsufficientPopulation,
			fmt.Sprintf("%s needs %d distinct users, population has %d", what, need, len(users)))
	}
	return nil
}

func checkScope(scope Scope) error {
	if scope.Currency == "" {
		return dErrors.New(dErrors.CodeInvalidConfig, "currency is required")
	}
	if scope.Span.Duration() < window.MinSpanDays*window.Day {
		return dErrors.New(dErrors.CodeInvalidConfig,
			fmt.Sprintf("scenario span of %s is shorter than %d days", scope.Span.Duration(), window.MinSpanDays))
	}
	return nil
}
