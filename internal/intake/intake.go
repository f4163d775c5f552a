// Package intake captures structured symptom information at booking time
// and attaches a specialization suggestion from an external analyzer.
// The analyzer itself is a black box to this subsystem.
package intake

import (
	"context"
	"strings"

	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// Request is the raw intake submitted with a booking.
type Request struct {
	Symptoms string `json:"symptoms"`
	Severity string `json:"severity,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Suggester returns recommended specializations and a free-text summary
// for a symptom description. Implementations live outside this module.
type Suggester interface {
	Suggest(ctx context.Context, symptoms string) (specializations []string, summary string, err error)
}

// Capture builds the appointment intake record, consulting the suggester
// when one is configured. Suggester failures degrade to a bare intake;
// they never fail the booking.
func Capture(ctx context.Context, req Request, suggester Suggester, logger *logging.Logger) *appointments.Intake {
	if strings.TrimSpace(req.Symptoms) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	in := &appointments.Intake{
		Symptoms: req.Symptoms,
		Severity: req.Severity,
		Duration: req.Duration,
	}
	if suggester == nil {
		return in
	}
	specs, summary, err := suggester.Suggest(ctx, req.Symptoms)
	if err != nil {
		logger.Warn("intake suggestion failed", "error", err)
		return in
	}
	in.Specializations = specs
	in.Summary = summary
	return in
}

// StaticSuggester returns a fixed suggestion, for tests and offline use.
type StaticSuggester struct {
	Specializations []string
	Summary         string
}

// Suggest returns the configured suggestion.
func (s *StaticSuggester) Suggest(ctx context.Context, symptoms string) ([]string, string, error) {
	return s.Specializations, s.Summary, nil
}

var _ Suggester = (*StaticSuggester)(nil)
