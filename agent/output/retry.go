package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/careermate/agent/contract"
)

// Regenerator asks the generation engine for a new candidate after a violation.
type Regenerator func(ctx context.Context, previous string, violation *Violation) (string, error)

// ValidateWithRetry validates candidate and, on a violation, asks regenerate
// for a corrected candidate at most MaxRetries times. It returns the number of
// retries issued. Errors from regenerate are returned unchanged.
func (v *Validator) ValidateWithRetry(
	ctx context.Context,
	candidate string,
	s Schema,
	regenerate Regenerator,
) (contractx.StructuredResult, int, error) {
	retries := 0
	for {
		result, err := v.Validate(candidate, s)
		if err == nil {
			return result, retries, nil
		}

		var violation *Violation
		if !errors.As(err, &violation) {
			return contractx.StructuredResult{}, retries, err
		}
		if regenerate == nil || retries >= v.maxRetries {
			return contractx.StructuredResult{}, retries, fmt.Errorf("retries exhausted after %d: %w", retries, violation)
		}

		retries++
		log.Warn().
			Str("schema", s.Name).
			Str("field", violation.Field).
			Str("reason", violation.Reason).
			Int("retry", retries).
			Msg("candidate rejected, requesting correction")

		next, err := regenerate(ctx, candidate, violation)
		if err != nil {
			return contractx.StructuredResult{}, retries, err
		}
		candidate = next
	}
}
