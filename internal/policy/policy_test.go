package policy

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
)

func testConfig() config.ReviewConfig {
	return config.ReviewConfig{
		MaxFiles:          10,
		MaxChangesPerFile: 500,
		Concurrency:       5,
		Categories:        []string{"quality", "security"},
		IgnorePatterns:    []string{"*.lock", "*.md", "*.txt"},
		LanguageRules: map[string][]string{
			"python":     {"PEP 8 compliance", "Type hints"},
			"javascript": {"ESLint-style correctness issues"},
		},
	}
}

func makePatch(lines int) string {
	var b strings.Builder
	b.WriteString("@@ -1 +1 @@")
	for i := 1; i < lines; i++ {
		fmt.Fprintf(&b, "\n+line %d", i)
	}
	return b.String()
}

func TestEvaluate_EveryFileGetsExactlyOneDecision(t *testing.T) {
	files := []core.ChangedFile{
		{Path: "a.py", Language: "python", Patch: makePatch(10)},
		{Path: "README.md", Patch: makePatch(5)},
		{Path: "b.js", Language: "javascript", Patch: makePatch(20)},
	}

	decisions := Evaluate(files, testConfig())

	require.Len(t, decisions, len(files))
	for i, d := range decisions {
		assert.Equal(t, files[i].Path, d.File.Path, "input order must be preserved")
		if !d.Included {
			assert.NotEmpty(t, d.Reason, "excluded files must carry a reason")
		}
	}
}

func TestEvaluate_FileLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFiles = 1

	files := []core.ChangedFile{
		{Path: "a.py", Language: "python", Patch: makePatch(10)},
		{Path: "b.py", Language: "python", Patch: makePatch(10)},
	}

	decisions := Evaluate(files, cfg)

	require.Len(t, decisions, 2)
	assert.True(t, decisions[0].Included)
	assert.False(t, decisions[1].Included)
	assert.Equal(t, core.ReasonFileLimit, decisions[1].Reason)
}

func TestEvaluate_FileLimitTakesFirstNInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFiles = 3

	var files []core.ChangedFile
	for i := 0; i < 7; i++ {
		files = append(files, core.ChangedFile{
			Path:     fmt.Sprintf("f%d.go", i),
			Language: "go",
			Patch:    makePatch(5),
		})
	}

	decisions := Evaluate(files, cfg)

	for i, d := range decisions {
		if i < 3 {
			assert.True(t, d.Included, "file %d should be included", i)
		} else {
			assert.Equal(t, core.ReasonFileLimit, d.Reason, "file %d should hit the cap", i)
		}
	}
}

func TestEvaluate_OversizedPatchTruncatedNotExcluded(t *testing.T) {
	cfg := testConfig()

	files := []core.ChangedFile{
		{Path: "a.py", Language: "python", Patch: makePatch(50)},
		{Path: "b.py", Language: "python", Patch: makePatch(10000)},
		{Path: "c.rb", Language: "ruby", Patch: makePatch(20)},
	}

	decisions := Evaluate(files, cfg)
	require.Len(t, decisions, 3)

	for _, d := range decisions {
		assert.True(t, d.Included)
	}

	assert.False(t, decisions[0].Truncated)
	assert.True(t, decisions[1].Truncated)
	assert.LessOrEqual(t, PatchLineCount(decisions[1].Patch), cfg.MaxChangesPerFile+1)
	assert.False(t, decisions[2].Truncated)

	// c.rb has no configured rules and falls back to the generic set.
	assert.Equal(t, GenericRules, decisions[2].RuleSet.Rules)
}

func TestEvaluate_IgnorePatterns(t *testing.T) {
	files := []core.ChangedFile{
		{Path: "Cargo.lock", Patch: makePatch(3)},
		{Path: "docs/guide.md", Patch: makePatch(3)},
		{Path: "main.go", Language: "go", Patch: makePatch(3)},
	}

	decisions := Evaluate(files, testConfig())

	assert.False(t, decisions[0].Included)
	assert.Contains(t, decisions[0].Reason, core.ReasonIgnorePattern)
	assert.False(t, decisions[1].Included)
	assert.True(t, decisions[2].Included)
}

func TestEvaluate_IgnoredFilesDoNotConsumeFileBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFiles = 1

	files := []core.ChangedFile{
		{Path: "yarn.lock", Patch: makePatch(3)},
		{Path: "app.js", Language: "javascript", Patch: makePatch(3)},
	}

	decisions := Evaluate(files, cfg)

	assert.False(t, decisions[0].Included)
	assert.True(t, decisions[1].Included, "ignored file must not count against max_files")
}

func TestEvaluate_Idempotent(t *testing.T) {
	files := []core.ChangedFile{
		{Path: "a.py", Language: "python", Patch: makePatch(600)},
		{Path: "b.lock", Patch: makePatch(3)},
		{Path: "c.js", Language: "javascript", Patch: makePatch(40)},
	}
	cfg := testConfig()

	first := Evaluate(files, cfg)
	second := Evaluate(files, cfg)

	assert.Equal(t, first, second)
}

func TestRuleSetFor(t *testing.T) {
	cfg := testConfig()

	python := RuleSetFor("python", cfg)
	assert.Equal(t, "python", python.Language)
	assert.Contains(t, python.Rules, "PEP 8 compliance")

	unknown := RuleSetFor("cobol", cfg)
	assert.Equal(t, "cobol", unknown.Language)
	assert.Equal(t, GenericRules, unknown.Rules)

	untagged := RuleSetFor("", cfg)
	assert.Equal(t, "generic", untagged.Language)
	assert.Equal(t, GenericRules, untagged.Rules)
}

func TestTruncatePatch(t *testing.T) {
	patch := makePatch(10)

	kept, truncated := TruncatePatch(patch, 20)
	assert.False(t, truncated)
	assert.Equal(t, patch, kept)

	cut, truncated := TruncatePatch(patch, 4)
	assert.True(t, truncated)
	assert.Contains(t, cut, "diff truncated")
	assert.Contains(t, cut, "+line 3")
	assert.NotContains(t, cut, "+line 4")
}
