package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkraev/diffsentry/internal/core"
)

var (
	// Matches: ## Finding [path/to/file.go:123] or ## Finding [path/to/file.go]
	findingHeaderRegex = regexp.MustCompile(`(?i)##\s+Finding\s+\[([^\]:]+)(?::\s*(\d+))?\]`)
	severityRegex      = regexp.MustCompile(`(?i)\*\*Severity:?\*\*\s*(.*)`)
	categoryRegex      = regexp.MustCompile(`(?i)\*\*Category:?\*\*\s*(.*)`)
)

// ParseFindings extracts structured findings from the model's response for
// one file. It tolerates several common LLM quirks:
//   - response wrapped in ``` fences
//   - inconsistent casing in headings and field labels
//   - preamble text before the "# REVIEW FINDINGS" heading
//
// A response without the findings heading is a parse failure. A heading with
// zero finding blocks is a valid empty review. filePath fills in findings
// whose header omits the path.
func ParseFindings(response, filePath string) ([]core.Finding, error) {
	response = stripFence(response)

	lines := strings.Split(response, "\n")

	sawHeading := false
	var findings []core.Finding
	var current *core.Finding
	var messageBuilder strings.Builder
	var suggestionBuilder strings.Builder
	inSuggestion := false

	flush := func() {
		if current == nil {
			return
		}
		current.Message = strings.TrimSpace(messageBuilder.String())
		current.Suggestion = strings.TrimSpace(suggestionBuilder.String())
		messageBuilder.Reset()
		suggestionBuilder.Reset()
		findings = append(findings, *current)
		current = nil
		inSuggestion = false
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		upper := strings.ToUpper(line)

		if strings.HasPrefix(upper, "# REVIEW FINDINGS") {
			flush()
			sawHeading = true
			continue
		}

		if strings.HasPrefix(upper, "## FINDING") {
			flush()
			f := core.Finding{File: filePath}
			if matches := findingHeaderRegex.FindStringSubmatch(line); len(matches) == 3 {
				if path := strings.TrimSpace(matches[1]); path != "" {
					f.File = path
				}
				if matches[2] != "" {
					f.Line, _ = strconv.Atoi(matches[2])
				}
			}
			current = &f
			continue
		}

		if current == nil {
			continue
		}

		if strings.HasPrefix(upper, "**SEVERITY") {
			if matches := severityRegex.FindStringSubmatch(line); len(matches) > 1 {
				current.Severity = normalizeSeverity(matches[1])
			}
			continue
		}
		if strings.HasPrefix(upper, "**CATEGORY") {
			if matches := categoryRegex.FindStringSubmatch(line); len(matches) > 1 {
				current.Category = normalizeCategory(matches[1])
			}
			continue
		}
		if strings.HasPrefix(upper, "### SUGGESTION") {
			inSuggestion = true
			continue
		}

		builder := &messageBuilder
		if inSuggestion {
			builder = &suggestionBuilder
		}
		if line != "" || builder.Len() > 0 {
			builder.WriteString(raw + "\n")
		}
	}
	flush()

	if !sawHeading {
		return nil, fmt.Errorf("%w: no findings heading in response", core.ErrParse)
	}

	return findings, nil
}

// normalizeCategory folds model output onto the known category tags. Values
// the model invents are bucketed as quality rather than rejected.
func normalizeCategory(s string) core.Category {
	switch core.Category(strings.ToLower(strings.TrimSpace(s))) {
	case core.CategorySecurity:
		return core.CategorySecurity
	case core.CategoryPerformance:
		return core.CategoryPerformance
	case core.CategoryMaintainability:
		return core.CategoryMaintainability
	case core.CategoryTesting:
		return core.CategoryTesting
	default:
		return core.CategoryQuality
	}
}

// normalizeSeverity folds model output onto the known severity levels,
// defaulting unrecognized values to info.
func normalizeSeverity(s string) core.Severity {
	switch core.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case core.SeverityCritical:
		return core.SeverityCritical
	case core.SeverityHigh:
		return core.SeverityHigh
	case core.SeverityMedium:
		return core.SeverityMedium
	case core.SeverityLow:
		return core.SeverityLow
	default:
		return core.SeverityInfo
	}
}

// stripFence removes ``` wrapping that some LLMs add around their output.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
