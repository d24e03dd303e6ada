package core

// RepoRules represents the structure of the optional .diffsentry.yml file
// checked into a reviewed repository. Values merge over the built-in
// defaults; the merged result is loaded once per run and never mutated.
type RepoRules struct {
	// Custom instructions appended verbatim to every review prompt.
	CustomInstructions []string `yaml:"custom_instructions"`

	// Extra review rules keyed by language tag, e.g. "python" or "go".
	LanguageRules map[string][]string `yaml:"language_rules"`

	// Glob patterns for files that should never be sent for review.
	// Example: ["*.lock", "vendor/*"]
	IgnorePatterns []string `yaml:"ignore_patterns"`
}

// DefaultRepoRules returns an empty rules overlay.
func DefaultRepoRules() *RepoRules {
	return &RepoRules{
		CustomInstructions: []string{},
		LanguageRules:      map[string][]string{},
		IgnorePatterns:     []string{},
	}
}
