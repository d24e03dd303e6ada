// Package report merges per-file review results into one aggregated report
// and renders it as a Markdown pull request comment. Aggregation is pure:
// no I/O, no mutation of its inputs.
package report

import (
	"github.com/mkraev/diffsentry/internal/core"
)

// Aggregate merges policy decisions and per-file results into one report.
// decisions must cover every changed file in original order; results must
// hold one entry per included decision, in included order. The orchestrator
// maintains that ordering regardless of call completion order. Every changed
// file ends up in exactly one of the report's sections, never silently
// dropped.
func Aggregate(ref core.PullRequestRef, decisions []core.PolicyDecision, results []core.FileReviewResult) core.AggregatedReport {
	report := core.AggregatedReport{
		Ref:            ref,
		CategoryCounts: make(map[core.Category]int),
		SeverityCounts: make(map[core.Severity]int),
	}

	next := 0
	for _, decision := range decisions {
		if !decision.Included {
			report.Excluded = append(report.Excluded, core.ExcludedFile{
				Path:   decision.File.Path,
				Reason: decision.Reason,
			})
			continue
		}

		if next >= len(results) {
			// Defensive: an included decision without a result is recorded
			// as a failure rather than vanishing from the report.
			report.Results = append(report.Results, core.FileReviewResult{
				File: decision.File,
				Err:  core.ErrTransport,
			})
			report.Failed++
			continue
		}

		result := results[next]
		next++
		result.Truncated = decision.Truncated

		report.Results = append(report.Results, result)
		if result.Failed() {
			report.Failed++
			continue
		}

		report.Reviewed++
		report.TotalFindings += len(result.Findings)
		for _, f := range result.Findings {
			report.CategoryCounts[f.Category]++
			report.SeverityCounts[f.Severity]++
		}
	}

	return report
}
