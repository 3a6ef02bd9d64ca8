package driving

import (
	"context"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

// AssistService generates resume text with the configured LLM.
type AssistService interface {
	// Generate validates req and asks the LLM for text.
	// Returns domain.ErrInvalidInput before any network call for bad input,
	// domain.ErrLLMUnavailable when no LLM is configured.
	Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error)

	// ApplyToBlock writes a result into a block through the editor:
	// the paragraph to "summary" and any bullets to "highlights".
	ApplyToBlock(sectionID, blockID string, result *domain.GenerateResult) error

	// Available reports whether an LLM is configured.
	Available() bool
}
