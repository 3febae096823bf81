// Package modlog defines the moderation-log data model and the store
// interface used by the report generator and the ingestion poller.
package modlog

// Kind classifies a moderation-log entry by the content it acted on.
type Kind string

const (
	// KindComment marks a comment removal.
	KindComment Kind = "comment"

	// KindSubmission marks a submission (link/self post) removal.
	KindSubmission Kind = "submission"

	// KindOther covers every other moderator action (bans, config edits, ...).
	KindOther Kind = "other"
)

// KindForAction maps a platform action code to an entry kind.
func KindForAction(action string) Kind {
	switch action {
	case "removecomment", "spamcomment":
		return KindComment
	case "removelink", "spamlink":
		return KindSubmission
	default:
		return KindOther
	}
}

// Entry is a single moderation action as persisted per community.
// Entries are immutable once stored; retention is handled externally.
type Entry struct {
	// Subreddit is the community the action happened in. Every entry in a
	// store partition carries the partition's community name
	// (case-insensitively).
	Subreddit string `json:"subreddit"`

	// Author is the user the action targeted (for removals, the author of
	// the removed content).
	Author string `json:"author"`

	// Mod is the moderator who performed the action.
	Mod string `json:"mod"`

	// Action is the raw platform action code, e.g. "removecomment".
	Action string `json:"action"`

	// Kind is derived from Action at ingestion time.
	Kind Kind `json:"kind"`

	// Timestamp is the action time in epoch milliseconds, UTC.
	Timestamp int64 `json:"timestamp"`

	// Permalink points at the acted-on content, when the platform exposes one.
	Permalink string `json:"permalink,omitempty"`

	// Title is the submission title for submission entries.
	Title string `json:"title,omitempty"`

	// Body is a snapshot of the removed content, when available.
	Body string `json:"body,omitempty"`
}
