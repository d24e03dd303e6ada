package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/diffsentry/internal/core"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	mgr, err := NewManager()
	require.NoError(t, err)
	return NewBuilder(mgr, "default",
		[]string{"quality", "security"},
		[]string{"Prefer table-driven tests"},
	)
}

func includedDecision() core.PolicyDecision {
	return core.PolicyDecision{
		File:     core.ChangedFile{Path: "pkg/server.py", Language: "python"},
		Included: true,
		Patch:    "@@ -1 +1 @@\n+import os",
		RuleSet: core.RuleSet{
			Language: "python",
			Rules:    []string{"PEP 8 compliance", "Type hints"},
		},
	}
}

func TestBuild_PromptContainsRequiredContents(t *testing.T) {
	b := newTestBuilder(t)

	req, err := b.Build(includedDecision())
	require.NoError(t, err)

	assert.Equal(t, "pkg/server.py", req.File.Path)
	assert.Equal(t, "python", req.RuleSet.Language)

	// The prompt text is not asserted byte-for-byte, only its required parts.
	assert.Contains(t, req.Prompt, "pkg/server.py")
	assert.Contains(t, req.Prompt, "PEP 8 compliance")
	assert.Contains(t, req.Prompt, "- quality")
	assert.Contains(t, req.Prompt, "- security")
	assert.Contains(t, req.Prompt, "Prefer table-driven tests")
	assert.Contains(t, req.Prompt, "+import os")
	assert.Contains(t, req.Prompt, "# REVIEW FINDINGS")
	assert.NotContains(t, req.Prompt, "was truncated")
}

func TestBuild_TruncatedNote(t *testing.T) {
	b := newTestBuilder(t)

	d := includedDecision()
	d.Truncated = true

	req, err := b.Build(d)
	require.NoError(t, err)
	assert.Contains(t, req.Prompt, "truncated")
}

func TestBuild_RejectsExcludedDecision(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Build(core.PolicyDecision{
		File:   core.ChangedFile{Path: "skipped.md"},
		Reason: core.ReasonIgnorePattern,
	})
	assert.Error(t, err)
}

func TestManager_FallsBackToDefaultProvider(t *testing.T) {
	mgr, err := NewManager()
	require.NoError(t, err)

	tmpl, err := mgr.Get(FileReviewKey, ModelProvider("some-exotic-model"))
	require.NoError(t, err)
	assert.NotNil(t, tmpl)
}
