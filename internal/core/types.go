// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import "fmt"

// PullRequestRef identifies a single pull request on the hosting platform.
// It is created once from CLI or webhook input and passed read-only through
// the pipeline.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// FullName returns the repository in "owner/repo" form.
func (r PullRequestRef) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", r.FullName(), r.Number)
}

// ChangedFile holds the path and patch data for a single file included in a
// pull request, along with the language tag inferred from its extension.
type ChangedFile struct {
	Path      string
	Language  string
	Patch     string
	Additions int
	Deletions int
}

// Exclusion reasons recorded in PolicyDecision.Reason.
const (
	ReasonFileLimit     = "file-limit-exceeded"
	ReasonIgnorePattern = "ignore-pattern"
)

// RuleSet is the list of review rules applied for one language tag.
type RuleSet struct {
	Language string
	Rules    []string
}

// PolicyDecision is the review policy's verdict for one changed file.
// For included files Patch carries the (possibly truncated) diff that will be
// submitted for review. Decisions are never mutated after creation.
type PolicyDecision struct {
	File      ChangedFile
	Included  bool
	Reason    string
	Patch     string
	Truncated bool
	RuleSet   RuleSet
}

// ReviewRequest is a fully rendered model prompt for one included file.
type ReviewRequest struct {
	File    ChangedFile
	Prompt  string
	RuleSet RuleSet
}

// Category classifies a finding into one of the enabled review categories.
type Category string

const (
	CategoryQuality         Category = "quality"
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryTesting         Category = "testing"
)

// Severity grades how urgent a finding is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is one reviewer observation produced by parsing a model response.
type Finding struct {
	Category   Category
	Severity   Severity
	File       string
	Line       int // 0 means no line hint
	Message    string
	Suggestion string
}

// FileReviewResult holds the outcome of reviewing one included file: either
// an ordered sequence of findings or a failure marker with the error detail.
// Exactly one result exists per included file and it is immutable once
// produced.
type FileReviewResult struct {
	File      ChangedFile
	Findings  []Finding
	Truncated bool
	Err       error
}

// Failed reports whether the review attempt for this file errored.
func (r FileReviewResult) Failed() bool { return r.Err != nil }

// ExcludedFile records a file the policy deliberately kept out of review.
type ExcludedFile struct {
	Path   string
	Reason string
}

// AggregatedReport is the merged outcome of one review run. Results preserve
// the original changed-file order regardless of the order in which the
// per-file model calls completed.
type AggregatedReport struct {
	Ref            PullRequestRef
	Results        []FileReviewResult
	Excluded       []ExcludedFile
	CategoryCounts map[Category]int
	SeverityCounts map[Severity]int
	Reviewed       int
	Failed         int
	TotalFindings  int
}
