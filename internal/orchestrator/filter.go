package orchestrator

import "path/filepath"

// LogFunc is called to log debug messages.
type LogFunc func(msg string, args ...interface{})

// RepoFilter selects repository slugs matching a set of glob patterns.
type RepoFilter struct {
	patterns []string
	logFunc  LogFunc
}

// NewRepoFilterWithLog creates a filter that logs excluded repositories.
func NewRepoFilterWithLog(patterns []string, logFunc LogFunc) *RepoFilter {
	return &RepoFilter{patterns: patterns, logFunc: logFunc}
}

// Filter returns the slugs from all that match at least one configured
// pattern.
func (f *RepoFilter) Filter(all []string) []string {
	if len(f.patterns) == 0 {
		return nil
	}

	var matched []string
	for _, slug := range all {
		if f.ShouldInclude(slug) {
			matched = append(matched, slug)
		} else if f.logFunc != nil {
			f.logFunc("repo filter excluded: %s (no pattern matched)", slug)
		}
	}
	return matched
}

// ShouldInclude reports whether slug matches at least one configured
// pattern.
func (f *RepoFilter) ShouldInclude(slug string) bool {
	for _, pattern := range f.patterns {
		if matched, _ := filepath.Match(pattern, slug); matched {
			return true
		}
	}
	return false
}

// HasGlobs reports whether any configured pattern contains glob
// metacharacters, meaning the full repository list must be fetched and
// filtered rather than addressed directly by slug.
func (f *RepoFilter) HasGlobs() bool {
	for _, pattern := range f.patterns {
		for _, c := range pattern {
			if c == '*' || c == '?' || c == '[' || c == '\\' {
				return true
			}
		}
	}
	return false
}

// LiteralSlugs returns the configured patterns verbatim, valid only when
// HasGlobs is false.
func (f *RepoFilter) LiteralSlugs() []string {
	return f.patterns
}
