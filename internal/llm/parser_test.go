package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/diffsentry/internal/core"
)

func TestParseFindings(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		expectErr bool
		check     func(t *testing.T, findings []core.Finding)
	}{
		{
			name: "single complete finding",
			input: `# REVIEW FINDINGS
## Finding [pkg/server.py:42]
**Category:** security
**Severity:** high
User input flows into the SQL string unescaped.
### Suggestion
Use a parameterized query.`,
			wantCount: 1,
			check: func(t *testing.T, findings []core.Finding) {
				f := findings[0]
				assert.Equal(t, "pkg/server.py", f.File)
				assert.Equal(t, 42, f.Line)
				assert.Equal(t, core.CategorySecurity, f.Category)
				assert.Equal(t, core.SeverityHigh, f.Severity)
				assert.Contains(t, f.Message, "SQL string")
				assert.Contains(t, f.Suggestion, "parameterized query")
			},
		},
		{
			name: "preamble tolerated",
			input: `Sure! Here is my review of the changes.

# REVIEW FINDINGS
## Finding [a.go:1]
**Category:** quality
**Severity:** low
Short variable name.`,
			wantCount: 1,
		},
		{
			name: "fenced response",
			input: "```markdown\n# REVIEW FINDINGS\n## Finding [a.go:3]\n**Category:** testing\n**Severity:** medium\nNo test covers the new branch.\n```",
			wantCount: 1,
			check: func(t *testing.T, findings []core.Finding) {
				assert.Equal(t, core.CategoryTesting, findings[0].Category)
			},
		},
		{
			name: "no line hint falls back to reviewed file",
			input: `# REVIEW FINDINGS
## Finding [main.py]
**Category:** maintainability
**Severity:** info
Module is getting long.`,
			wantCount: 1,
			check: func(t *testing.T, findings []core.Finding) {
				assert.Equal(t, "main.py", findings[0].File)
				assert.Zero(t, findings[0].Line)
			},
		},
		{
			name: "multiple findings preserve order",
			input: `# REVIEW FINDINGS
## Finding [x.js:1]
**Category:** quality
**Severity:** low
First.
## Finding [x.js:9]
**Category:** performance
**Severity:** medium
Second.`,
			wantCount: 2,
			check: func(t *testing.T, findings []core.Finding) {
				assert.Equal(t, 1, findings[0].Line)
				assert.Equal(t, 9, findings[1].Line)
				assert.Equal(t, core.CategoryPerformance, findings[1].Category)
			},
		},
		{
			name:      "clean review with zero findings",
			input:     "# REVIEW FINDINGS\n",
			wantCount: 0,
		},
		{
			name: "unknown category and severity normalized",
			input: `# REVIEW FINDINGS
## Finding [y.rb:5]
**Category:** vibes
**Severity:** apocalyptic
Something felt off.`,
			wantCount: 1,
			check: func(t *testing.T, findings []core.Finding) {
				assert.Equal(t, core.CategoryQuality, findings[0].Category)
				assert.Equal(t, core.SeverityInfo, findings[0].Severity)
			},
		},
		{
			name: "lowercase field labels still normalized",
			input: `# review findings
## finding [z.py:3]
**category:** security
**severity:** high
Bad input handling.`,
			wantCount: 1,
			check: func(t *testing.T, findings []core.Finding) {
				f := findings[0]
				assert.Equal(t, core.CategorySecurity, f.Category)
				assert.Equal(t, core.SeverityHigh, f.Severity)
				assert.Equal(t, "Bad input handling.", f.Message)
				assert.NotContains(t, f.Message, "**")
			},
		},
		{
			name:      "free text is a parse failure",
			input:     "The code looks pretty good to me overall, nice work!",
			expectErr: true,
		},
		{
			name:      "empty response is a parse failure",
			input:     "",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := ParseFindings(tt.input, "fallback.py")
			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrParse)
				return
			}
			require.NoError(t, err)
			require.Len(t, findings, tt.wantCount)
			if tt.check != nil {
				tt.check(t, findings)
			}
		})
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no fence",
			input: "# REVIEW FINDINGS",
			want:  "# REVIEW FINDINGS",
		},
		{
			name:  "markdown fence",
			input: "```markdown\n# REVIEW FINDINGS\n```",
			want:  "# REVIEW FINDINGS",
		},
		{
			name:  "bare fence",
			input: "```\n# REVIEW FINDINGS\n```",
			want:  "# REVIEW FINDINGS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFence(tt.input))
		})
	}
}
