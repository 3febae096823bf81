package subconfig

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Resolver produces the effective configuration for a community by merging
// a stored override document onto the defaults.
type Resolver struct {
	store    Store
	defaults Config
}

// NewResolver creates a resolver over the given override store.
func NewResolver(store Store, defaults Config) *Resolver {
	return &Resolver{
		store:    store,
		defaults: defaults,
	}
}

// Defaults returns the baseline configuration the resolver merges onto.
func (r *Resolver) Defaults() Config {
	return r.defaults
}

// Resolve returns the effective configuration for a community.
//
// The store lookup is case-insensitive and substring-tolerant: the match
// pattern is derived from the identifier rather than compared for strict
// equality, so a community named "foo" can match a stored document named
// "foobar". That looseness is long-standing observed behavior and is kept
// on purpose; tighten it only together with the stored documents.
//
// Absence of an override is not an error and resolves to the defaults.
// A store-level failure propagates to the caller unconverted.
func (r *Resolver) Resolve(ctx context.Context, subreddit string) (Config, error) {
	override, err := r.store.FindOverride(ctx, subreddit)
	if err != nil {
		return Config{}, fmt.Errorf("failed to look up config for %s: %w", subreddit, err)
	}
	if override == nil {
		return r.defaults, nil
	}

	log.Debug().Str("subreddit", subreddit).Str("matched", override.Name).Msg("subconfig: override found")

	cfg := r.defaults

	applyBool(&cfg.ShowCommentLinks, override.ShowCommentLinks)
	applyBool(&cfg.ShowSubmissionLinks, override.ShowSubmissionLinks)
	applyBool(&cfg.ShowAuthor, override.ShowAuthor)
	applyBool(&cfg.ShowTitle, override.ShowTitle)
	applyBool(&cfg.ShowMod, override.ShowMod)
	applyBool(&cfg.ShowAction, override.ShowAction)
	applyBool(&cfg.ShowTimestamp, override.ShowTimestamp)
	applyBool(&cfg.ShowBody, override.ShowBody)

	applyFilter(&cfg.IncludeMods, override.IncludeMods)
	applyFilter(&cfg.ExcludeMods, override.ExcludeMods)
	applyFilter(&cfg.IncludeActions, override.IncludeActions)
	applyFilter(&cfg.ExcludeActions, override.ExcludeActions)

	return cfg, nil
}

// applyBool overlays a present override flag; null/absent keeps the default.
func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// applyFilter overlays a present, truthy filter-list field after coercion.
func applyFilter(dst *[]string, src any) {
	if normalized := NormalizeFilterList(src); normalized != nil {
		*dst = normalized
	}
}
