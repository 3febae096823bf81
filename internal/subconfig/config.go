// Package subconfig resolves effective per-community display configuration
// by merging stored overrides onto system defaults.
package subconfig

import "context"

// Config is the effective display configuration for one community.
// The four filter lists are either nil (no filter) or slices of lowercase
// strings; Resolve guarantees that shape regardless of what storage holds.
type Config struct {
	ShowCommentLinks    bool `json:"showCommentLinks"`
	ShowSubmissionLinks bool `json:"showSubmissionLinks"`
	ShowAuthor          bool `json:"showAuthor"`
	ShowTitle           bool `json:"showTitle"`
	ShowMod             bool `json:"showMod"`
	ShowAction          bool `json:"showAction"`
	ShowTimestamp       bool `json:"showTimestamp"`
	ShowBody            bool `json:"showBody"`

	IncludeMods    []string `json:"includeMods,omitempty"`
	ExcludeMods    []string `json:"excludeMods,omitempty"`
	IncludeActions []string `json:"includeActions,omitempty"`
	ExcludeActions []string `json:"excludeActions,omitempty"`
}

// Defaults returns the baseline configuration. All visibility flags are on
// in a development posture and off otherwise; filter lists default to nil.
func Defaults(dev bool) Config {
	return Config{
		ShowCommentLinks:    dev,
		ShowSubmissionLinks: dev,
		ShowAuthor:          dev,
		ShowTitle:           dev,
		ShowMod:             dev,
		ShowAction:          dev,
		ShowTimestamp:       dev,
		ShowBody:            dev,
	}
}

// Override is a stored per-community configuration document. Boolean flags
// use pointers so that absent/null fields can be told apart from false.
// Filter-list fields are untyped because stored documents may hold null,
// a bare scalar, or mixed-case strings; NormalizeFilterList coerces them.
type Override struct {
	Name string `json:"name"`

	ShowCommentLinks    *bool `json:"showCommentLinks,omitempty"`
	ShowSubmissionLinks *bool `json:"showSubmissionLinks,omitempty"`
	ShowAuthor          *bool `json:"showAuthor,omitempty"`
	ShowTitle           *bool `json:"showTitle,omitempty"`
	ShowMod             *bool `json:"showMod,omitempty"`
	ShowAction          *bool `json:"showAction,omitempty"`
	ShowTimestamp       *bool `json:"showTimestamp,omitempty"`
	ShowBody            *bool `json:"showBody,omitempty"`

	IncludeMods    any `json:"includeMods,omitempty"`
	ExcludeMods    any `json:"excludeMods,omitempty"`
	IncludeActions any `json:"includeActions,omitempty"`
	ExcludeActions any `json:"excludeActions,omitempty"`
}

// Store defines lookup of stored override documents.
// FindOverride matches the stored name field case-insensitively and
// substring-tolerantly (a pattern derived from the identifier, not strict
// equality) and returns nil with no error when nothing matches.
type Store interface {
	FindOverride(ctx context.Context, subreddit string) (*Override, error)
}
