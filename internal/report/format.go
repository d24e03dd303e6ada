package report

import (
	"fmt"
	"strings"

	"github.com/mkraev/diffsentry/internal/core"
)

var severityOrder = []core.Severity{
	core.SeverityCritical,
	core.SeverityHigh,
	core.SeverityMedium,
	core.SeverityLow,
	core.SeverityInfo,
}

var categoryOrder = []core.Category{
	core.CategorySecurity,
	core.CategoryQuality,
	core.CategoryPerformance,
	core.CategoryMaintainability,
	core.CategoryTesting,
}

// Markdown renders the aggregated report as a single pull request comment.
// The comment always carries the exclusion and failure sections when those
// lists are non-empty, so a partially failed run still produces a usable
// report instead of silently shrinking.
func Markdown(report core.AggregatedReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### 🛡️ Review Summary for %s\n\n", report.Ref.String())
	sb.WriteString(summaryLine(report))
	sb.WriteString("\n\n")

	if report.TotalFindings > 0 {
		writeStatistics(&sb, report)
	}

	for _, result := range report.Results {
		if result.Failed() || len(result.Findings) == 0 {
			continue
		}
		writeFileSection(&sb, result)
	}

	writeExcluded(&sb, report.Excluded)
	writeFailed(&sb, report.Results)

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// summaryLine produces the one-line verdict at the top of the comment.
func summaryLine(report core.AggregatedReport) string {
	switch {
	case report.Reviewed == 0 && report.Failed > 0:
		return "🚫 No files could be reviewed. See the failure details below."
	case report.Reviewed == 0:
		return "ℹ️ No files were eligible for review."
	case report.TotalFindings == 0:
		return fmt.Sprintf("✅ Reviewed %d file(s) and found no issues.", report.Reviewed)
	default:
		return fmt.Sprintf("Reviewed %d file(s) and found **%d** issue(s).", report.Reviewed, report.TotalFindings)
	}
}

func writeStatistics(sb *strings.Builder, report core.AggregatedReport) {
	sb.WriteString("#### 📊 Issue Statistics\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|----------|-------|\n")
	for _, sev := range severityOrder {
		if count := report.SeverityCounts[sev]; count > 0 {
			fmt.Fprintf(sb, "| %s %s | %d |\n", severityEmoji(sev), titleCase(string(sev)), count)
		}
	}
	sb.WriteString("\n| Category | Count |\n")
	sb.WriteString("|----------|-------|\n")
	for _, cat := range categoryOrder {
		if count := report.CategoryCounts[cat]; count > 0 {
			fmt.Fprintf(sb, "| %s | %d |\n", titleCase(string(cat)), count)
		}
	}
	sb.WriteString("\n")
}

func writeFileSection(sb *strings.Builder, result core.FileReviewResult) {
	fmt.Fprintf(sb, "#### 📄 `%s`\n\n", result.File.Path)
	if result.Truncated {
		sb.WriteString("> [!NOTE]\n> The diff for this file was truncated before review; findings may be incomplete.\n\n")
	}

	for _, f := range result.Findings {
		// The reviewed path is authoritative; paths echoed back by the model
		// are not trusted for display.
		location := result.File.Path
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", result.File.Path, f.Line)
		}
		fmt.Fprintf(sb, "- %s **%s** | %s | `%s`\n", severityEmoji(f.Severity), titleCase(string(f.Severity)), titleCase(string(f.Category)), location)
		writeIndented(sb, f.Message)
		if f.Suggestion != "" {
			sb.WriteString("  - 💡 Suggestion:\n")
			writeIndented(sb, f.Suggestion)
		}
	}
	sb.WriteString("\n")
}

func writeExcluded(sb *strings.Builder, excluded []core.ExcludedFile) {
	if len(excluded) == 0 {
		return
	}
	sb.WriteString("<details>\n<summary>⏭️ Skipped files</summary>\n\n")
	for _, ex := range excluded {
		fmt.Fprintf(sb, "- `%s`: %s\n", ex.Path, ex.Reason)
	}
	sb.WriteString("\n</details>\n\n")
}

func writeFailed(sb *strings.Builder, results []core.FileReviewResult) {
	var failed []core.FileReviewResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}

	sb.WriteString("<details>\n<summary>⚠️ Files that could not be reviewed</summary>\n\n")
	for _, r := range failed {
		fmt.Fprintf(sb, "- `%s`: %v\n", r.File.Path, r.Err)
	}
	sb.WriteString("\n</details>\n\n")
}

// writeIndented emits a message block nested under a list item.
func writeIndented(sb *strings.Builder, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		sb.WriteString("  " + line + "\n")
	}
}

func severityEmoji(severity core.Severity) string {
	switch severity {
	case core.SeverityCritical:
		return "🔴"
	case core.SeverityHigh:
		return "🟠"
	case core.SeverityMedium:
		return "🟡"
	case core.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
