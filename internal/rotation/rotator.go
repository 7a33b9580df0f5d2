// Package rotation picks which active question a cohort receives on a
// cycle. Pure modulo over the ordered active list: over enough cycles
// every active question reaches every cohort, and activating or
// deactivating a question only shifts the rotation.
package rotation

import (
	"errors"

	"github.com/aura-pulse/backend/internal/models"
)

// ErrNoActiveQuestions signals that a tenant has nothing to send. The
// scheduler skips the cohort for the cycle; it is not a failure.
var ErrNoActiveQuestions = errors.New("no active questions")

// Pick returns the question for the given cohort position.
func Pick(active []models.PulseQuestion, cohortPos int) (models.PulseQuestion, error) {
	if len(active) == 0 {
		return models.PulseQuestion{}, ErrNoActiveQuestions
	}
	if cohortPos < 0 {
		cohortPos = -cohortPos
	}
	return active[cohortPos%len(active)], nil
}
