package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ScheduledPostRecord is the raw row of the scheduled_posts table. The JSON
// columns are kept as text; decoding happens in the service layer.
type ScheduledPostRecord struct {
	ID            int64          `db:"id"`
	Content       string         `db:"content"`
	Platforms     string         `db:"platforms"`
	ScheduledTime string         `db:"scheduled_time"`
	Status        string         `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	MediaPaths    sql.NullString `db:"media_paths"`
	PostMode      sql.NullString `db:"post_mode"`
}

// ScheduledPost is a decoded scheduled post.
type ScheduledPost struct {
	ID            int64       `json:"id"`
	Content       Content     `json:"content"`
	Platforms     Platforms   `json:"platforms"`
	ScheduledTime time.Time   `json:"scheduled_time"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	MediaPaths    *MediaPaths `json:"media_paths"`
	PostMode      PostMode    `json:"post_mode"`

	// DecodeErr is set when a stored JSON field could not be decoded. Such a
	// post can only transition to failed.
	DecodeErr error `json:"-"`
}

// PlatformEntry is the per-platform selection stored alongside a post.
type PlatformEntry struct {
	Selected bool   `json:"selected"`
	Content  string `json:"content"`
}

type Platforms map[string]PlatformEntry

// Selected returns the names of the platforms marked as selected.
func (p Platforms) Selected() []string {
	var names []string
	for name, entry := range p {
		if entry.Selected {
			names = append(names, name)
		}
	}
	return names
}

type MediaPaths struct {
	Files []string `json:"files"`
}

func (m *MediaPaths) Empty() bool {
	return m == nil || len(m.Files) == 0
}

type PostMode string

const (
	PostModeUnified    PostMode = "unified"
	PostModeIndividual PostMode = "individual"
)

// ParsePostMode maps a stored or requested mode to a PostMode. Anything other
// than "individual" is treated as unified, which also covers rows written
// before the column existed.
func ParsePostMode(s string) PostMode {
	if PostMode(s) == PostModeIndividual {
		return PostModeIndividual
	}
	return PostModeUnified
}

// Content is the shared text carrier of a post. Exactly one of Text and
// PerPlatform is meaningful, selected by Mode.
type Content struct {
	Mode        PostMode
	Text        string
	PerPlatform map[string]string
}

func UnifiedContent(text string) Content {
	return Content{Mode: PostModeUnified, Text: text}
}

func IndividualContent(texts map[string]string) Content {
	return Content{Mode: PostModeIndividual, PerPlatform: texts}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Mode == PostModeIndividual {
		if c.PerPlatform == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(c.PerPlatform)
	}
	return json.Marshal(c.Text)
}

const (
	PostStatusPending   = "pending"
	PostStatusCompleted = "completed"
	PostStatusFailed    = "failed"
)
