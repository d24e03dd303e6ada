package prompt

import (
	"fmt"

	"github.com/mkraev/diffsentry/internal/core"
)

// Builder renders one self-contained review request per included file:
// reviewer role and response-format instructions, the applicable rule set,
// and the (possibly truncated) diff.
type Builder struct {
	mgr        *Manager
	provider   ModelProvider
	categories []string
	custom     []string
}

// NewBuilder creates a Builder for the given model provider. categories is
// the set of enabled review categories; custom carries repo-level
// instructions from .diffsentry.yml, if any.
func NewBuilder(mgr *Manager, provider string, categories, custom []string) *Builder {
	return &Builder{
		mgr:        mgr,
		provider:   ModelProvider(provider),
		categories: categories,
		custom:     custom,
	}
}

type fileReviewData struct {
	Path               string
	Language           string
	Rules              []string
	Categories         []string
	Truncated          bool
	CustomInstructions []string
	Diff               string
}

// Build renders the review prompt for one included policy decision.
func (b *Builder) Build(decision core.PolicyDecision) (core.ReviewRequest, error) {
	if !decision.Included {
		return core.ReviewRequest{}, fmt.Errorf("cannot build a prompt for excluded file %s", decision.File.Path)
	}

	rendered, err := b.mgr.Render(FileReviewKey, b.provider, fileReviewData{
		Path:               decision.File.Path,
		Language:           decision.RuleSet.Language,
		Rules:              decision.RuleSet.Rules,
		Categories:         b.categories,
		Truncated:          decision.Truncated,
		CustomInstructions: b.custom,
		Diff:               decision.Patch,
	})
	if err != nil {
		return core.ReviewRequest{}, fmt.Errorf("failed to render review prompt for %s: %w", decision.File.Path, err)
	}

	return core.ReviewRequest{
		File:    decision.File,
		Prompt:  rendered,
		RuleSet: decision.RuleSet,
	}, nil
}
