package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/crosspost/internal/models"
)

// decodePost turns a stored row into a ScheduledPost. A platforms or
// media_paths value that cannot be decoded is recorded in DecodeErr; content
// decoding never fails.
func decodePost(record *models.ScheduledPostRecord, scheduledTime time.Time) *models.ScheduledPost {
	mode := models.ParsePostMode(record.PostMode.String)

	post := &models.ScheduledPost{
		ID:            record.ID,
		ScheduledTime: scheduledTime,
		Status:        record.Status,
		CreatedAt:     record.CreatedAt,
		PostMode:      mode,
		Content:       decodeContent(record.ID, mode, record.Content),
	}

	platforms, err := decodePlatforms(record.ID, record.Platforms)
	if err != nil {
		post.DecodeErr = fmt.Errorf("decode platforms: %w", err)
		slog.Error("failed to decode platforms", "post_id", record.ID, "error", err)
	}
	post.Platforms = platforms

	media, err := decodeMediaPaths(record.MediaPaths)
	if err != nil {
		if post.DecodeErr == nil {
			post.DecodeErr = fmt.Errorf("decode media_paths: %w", err)
		}
		slog.Error("failed to decode media_paths", "post_id", record.ID, "error", err)
	}
	post.MediaPaths = media

	return post
}

// decodeContent reads the content column. Unified text is written as a JSON
// string, but older rows hold plain text; only values opening with a quote or
// brace are treated as JSON. A plain-text row that is itself a quoted string
// or a {"text":...} object cannot be told apart and is read as JSON.
func decodeContent(postID int64, mode models.PostMode, raw string) models.Content {
	if mode != models.PostModeIndividual {
		trimmed := strings.TrimSpace(raw)
		if !strings.HasPrefix(trimmed, `"`) && !strings.HasPrefix(trimmed, "{") {
			return models.UnifiedContent(raw)
		}
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		if mode == models.PostModeIndividual {
			slog.Warn("individual content is not valid JSON", "post_id", postID, "error", err)
			return models.IndividualContent(nil)
		}
		return models.UnifiedContent(raw)
	}

	if mode == models.PostModeIndividual {
		obj, ok := value.(map[string]any)
		if !ok {
			slog.Warn("individual content is not an object", "post_id", postID)
			return models.IndividualContent(nil)
		}
		texts := make(map[string]string, len(obj))
		for name, v := range obj {
			texts[name] = stringify(v)
		}
		return models.IndividualContent(texts)
	}

	switch v := value.(type) {
	case string:
		return models.UnifiedContent(v)
	case map[string]any:
		if text, ok := v["text"]; ok {
			return models.UnifiedContent(stringify(text))
		}
	}
	return models.UnifiedContent(strings.TrimSpace(raw))
}

func decodePlatforms(postID int64, raw string) (models.Platforms, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return models.Platforms{}, err
	}

	platforms := make(models.Platforms, len(entries))
	for name, v := range entries {
		var entry models.PlatformEntry
		if err := json.Unmarshal(v, &entry); err != nil {
			slog.Warn("skipping malformed platform entry", "post_id", postID, "platform", name, "error", err)
			continue
		}
		platforms[name] = entry
	}
	return platforms, nil
}

func decodeMediaPaths(raw sql.NullString) (*models.MediaPaths, error) {
	s := strings.TrimSpace(raw.String)
	if !raw.Valid || s == "" || s == "null" {
		return nil, nil
	}

	var media models.MediaPaths
	if err := json.Unmarshal([]byte(s), &media); err != nil {
		return nil, err
	}
	return &media, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
