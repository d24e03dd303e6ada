package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mkraev/diffsentry/internal/core"
)

var (
	ErrRulesNotFound = errors.New("rules file not found")
	ErrRulesParsing  = errors.New("rules file parsing failed")
)

// LoadRepoRules loads and parses the .diffsentry.yml file from a directory.
// A missing file is not an error condition for callers that treat the
// overlay as optional; they can check for ErrRulesNotFound.
func LoadRepoRules(dir string) (*core.RepoRules, error) {
	rulesPath := filepath.Join(dir, ".diffsentry.yml")
	data, err := os.ReadFile(rulesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.DefaultRepoRules(), ErrRulesNotFound
		}
		return nil, fmt.Errorf("failed to read .diffsentry.yml: %w", err)
	}

	rules := core.DefaultRepoRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRulesParsing, err)
	}
	return rules, nil
}

// MergeRepoRules folds a repo-level overlay into the review configuration,
// returning a new config. The input config is not mutated.
func MergeRepoRules(cfg ReviewConfig, rules *core.RepoRules) ReviewConfig {
	if rules == nil {
		return cfg
	}

	merged := cfg
	merged.IgnorePatterns = append(append([]string{}, cfg.IgnorePatterns...), rules.IgnorePatterns...)

	merged.LanguageRules = make(map[string][]string, len(cfg.LanguageRules))
	for lang, rs := range cfg.LanguageRules {
		merged.LanguageRules[lang] = append([]string{}, rs...)
	}
	for lang, extra := range rules.LanguageRules {
		merged.LanguageRules[lang] = append(merged.LanguageRules[lang], extra...)
	}
	return merged
}
