// Package policy decides which changed files qualify for review under the
// configured limits and selects the rule set each file is reviewed against.
// Evaluation is a pure function: no I/O, deterministic for identical inputs.
package policy

import (
	"path/filepath"

	"github.com/mkraev/diffsentry/internal/config"
	"github.com/mkraev/diffsentry/internal/core"
)

// GenericRules is the fallback rule set for language tags with no specific
// configuration. Unknown languages never cause exclusion.
var GenericRules = []string{
	"Correctness of the changed logic",
	"Error handling on failure paths",
	"Readability and naming",
	"Obvious security issues in the diff",
}

// Evaluate maps every changed file to exactly one decision, preserving input
// order. The first MaxFiles non-ignored files are included; files matching an
// ignore pattern are excluded with ReasonIgnorePattern and do not consume the
// file budget; everything past the cap is excluded with ReasonFileLimit.
// Oversized patches are truncated, never excluded.
func Evaluate(files []core.ChangedFile, cfg config.ReviewConfig) []core.PolicyDecision {
	decisions := make([]core.PolicyDecision, 0, len(files))

	included := 0
	for _, file := range files {
		if pattern, ok := matchesIgnore(file.Path, cfg.IgnorePatterns); ok {
			decisions = append(decisions, core.PolicyDecision{
				File:     file,
				Included: false,
				Reason:   core.ReasonIgnorePattern + ": " + pattern,
			})
			continue
		}

		if included >= cfg.MaxFiles {
			decisions = append(decisions, core.PolicyDecision{
				File:     file,
				Included: false,
				Reason:   core.ReasonFileLimit,
			})
			continue
		}
		included++

		patch, truncated := TruncatePatch(file.Patch, cfg.MaxChangesPerFile)
		decisions = append(decisions, core.PolicyDecision{
			File:      file,
			Included:  true,
			Patch:     patch,
			Truncated: truncated,
			RuleSet:   RuleSetFor(file.Language, cfg),
		})
	}

	return decisions
}

// RuleSetFor selects the configured rules for a language tag, falling back
// to the generic set for unknown or untagged languages.
func RuleSetFor(language string, cfg config.ReviewConfig) core.RuleSet {
	if rules, ok := cfg.LanguageRules[language]; ok && len(rules) > 0 {
		return core.RuleSet{Language: language, Rules: rules}
	}
	lang := language
	if lang == "" {
		lang = "generic"
	}
	return core.RuleSet{Language: lang, Rules: GenericRules}
}

// matchesIgnore checks the file path and its base name against the glob
// patterns, so "*.lock" matches nested paths like "deps/Cargo.lock".
func matchesIgnore(path string, patterns []string) (string, bool) {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return pattern, true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return pattern, true
		}
	}
	return "", false
}
