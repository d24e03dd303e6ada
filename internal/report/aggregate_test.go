package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/diffsentry/internal/core"
)

func ref() core.PullRequestRef {
	return core.PullRequestRef{Owner: "acme", Repo: "rocket", Number: 42}
}

func included(path string) core.PolicyDecision {
	return core.PolicyDecision{
		File:     core.ChangedFile{Path: path},
		Included: true,
	}
}

func excluded(path, reason string) core.PolicyDecision {
	return core.PolicyDecision{
		File:   core.ChangedFile{Path: path},
		Reason: reason,
	}
}

func success(path string, findings ...core.Finding) core.FileReviewResult {
	return core.FileReviewResult{
		File:     core.ChangedFile{Path: path},
		Findings: findings,
	}
}

func TestAggregate_PreservesInputOrder(t *testing.T) {
	decisions := []core.PolicyDecision{
		included("a.py"),
		excluded("b.lock", "ignore-pattern: *.lock"),
		included("c.py"),
		included("d.js"),
	}
	results := []core.FileReviewResult{
		success("a.py"),
		success("c.py"),
		success("d.js"),
	}

	report := Aggregate(ref(), decisions, results)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "a.py", report.Results[0].File.Path)
	assert.Equal(t, "c.py", report.Results[1].File.Path)
	assert.Equal(t, "d.js", report.Results[2].File.Path)
	require.Len(t, report.Excluded, 1)
	assert.Equal(t, "b.lock", report.Excluded[0].Path)
	assert.Equal(t, "ignore-pattern: *.lock", report.Excluded[0].Reason)
}

func TestAggregate_CountsByCategoryAndSeverity(t *testing.T) {
	decisions := []core.PolicyDecision{included("a.py"), included("b.py")}
	results := []core.FileReviewResult{
		success("a.py",
			core.Finding{Category: core.CategorySecurity, Severity: core.SeverityHigh},
			core.Finding{Category: core.CategorySecurity, Severity: core.SeverityLow},
		),
		success("b.py",
			core.Finding{Category: core.CategoryQuality, Severity: core.SeverityLow},
		),
	}

	report := Aggregate(ref(), decisions, results)

	assert.Equal(t, 2, report.Reviewed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, report.TotalFindings)
	assert.Equal(t, 2, report.CategoryCounts[core.CategorySecurity])
	assert.Equal(t, 1, report.CategoryCounts[core.CategoryQuality])
	assert.Equal(t, 1, report.SeverityCounts[core.SeverityHigh])
	assert.Equal(t, 2, report.SeverityCounts[core.SeverityLow])
}

func TestAggregate_FailedResultsDoNotCountFindings(t *testing.T) {
	decisions := []core.PolicyDecision{included("a.py"), included("b.py")}
	results := []core.FileReviewResult{
		success("a.py", core.Finding{Category: core.CategoryQuality, Severity: core.SeverityLow}),
		{
			File: core.ChangedFile{Path: "b.py"},
			Err:  errors.New("model call failed"),
		},
	}

	report := Aggregate(ref(), decisions, results)

	assert.Equal(t, 1, report.Reviewed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.TotalFindings)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[1].Failed())
}

func TestAggregate_TruncationFlagCarriesOver(t *testing.T) {
	decisions := []core.PolicyDecision{
		{
			File:      core.ChangedFile{Path: "big.py"},
			Included:  true,
			Truncated: true,
		},
	}
	results := []core.FileReviewResult{success("big.py")}

	report := Aggregate(ref(), decisions, results)

	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Truncated)
}

func TestAggregate_MissingResultBecomesFailure(t *testing.T) {
	decisions := []core.PolicyDecision{included("a.py"), included("b.py")}
	results := []core.FileReviewResult{success("a.py")}

	report := Aggregate(ref(), decisions, results)

	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[1].Failed())
	assert.Equal(t, "b.py", report.Results[1].File.Path)
	assert.Equal(t, 1, report.Failed)
}

func TestAggregate_EmptyInputs(t *testing.T) {
	report := Aggregate(ref(), nil, nil)

	assert.Empty(t, report.Results)
	assert.Empty(t, report.Excluded)
	assert.Zero(t, report.Reviewed)
	assert.Zero(t, report.TotalFindings)
}
