package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maheshrc27/crosspost/internal/models"
)

// PostRequest is the body of an immediate or scheduled post. Platform
// selection is read from "platforms" and also from top-level platform keys,
// which older clients send.
type PostRequest struct {
	Content       json.RawMessage  `json:"content"`
	Platforms     models.Platforms `json:"platforms"`
	PostMode      string           `json:"post_mode"`
	MediaFiles    []string         `json:"media_files"`
	ScheduledTime string           `json:"scheduled_time"`
}

// ScheduleRequest is a PostRequest that must carry a schedule time.
type ScheduleRequest = PostRequest

func (r *PostRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Content = raw["content"]
	r.Platforms = models.Platforms{}

	if v, ok := raw["post_mode"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &r.PostMode); err != nil {
			return fmt.Errorf("post_mode: %w", err)
		}
	}

	if v, ok := raw["scheduled_time"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &r.ScheduledTime); err != nil {
			return fmt.Errorf("scheduled_time: %w", err)
		}
	}

	if v, ok := raw["platforms"]; ok && !isNull(v) {
		var platforms models.Platforms
		if err := json.Unmarshal(v, &platforms); err != nil {
			return fmt.Errorf("platforms: %w", err)
		}
		for name, entry := range platforms {
			r.Platforms[name] = entry
		}
	}

	for _, name := range models.SupportedPlatforms {
		v, ok := raw[name]
		if !ok || isNull(v) {
			continue
		}
		var entry models.PlatformEntry
		if err := json.Unmarshal(v, &entry); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		r.Platforms[name] = entry
	}

	if v, ok := raw["media_files"]; ok && !isNull(v) {
		files, err := decodeMediaFiles(v)
		if err != nil {
			return fmt.Errorf("media_files: %w", err)
		}
		r.MediaFiles = files
	}

	return nil
}

// Mode returns the requested authoring mode, defaulting to unified.
func (r *PostRequest) Mode() models.PostMode {
	return models.ParsePostMode(r.PostMode)
}

// SharedContent interprets the content field for the requested mode. Unified
// content may be a string or an object with a text field; individual content
// is an object keyed by platform.
func (r *PostRequest) SharedContent() (models.Content, error) {
	if r.Mode() == models.PostModeIndividual {
		texts := map[string]string{}
		if len(r.Content) == 0 || isNull(r.Content) {
			return models.IndividualContent(texts), nil
		}
		if err := json.Unmarshal(r.Content, &texts); err != nil {
			return models.Content{}, fmt.Errorf("content must be an object keyed by platform: %w", err)
		}
		return models.IndividualContent(texts), nil
	}

	if len(r.Content) == 0 || isNull(r.Content) {
		return models.UnifiedContent(""), nil
	}

	var text string
	if err := json.Unmarshal(r.Content, &text); err == nil {
		return models.UnifiedContent(text), nil
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(r.Content, &obj); err != nil {
		return models.Content{}, fmt.Errorf("content must be a string: %w", err)
	}
	return models.UnifiedContent(obj.Text), nil
}

// decodeMediaFiles accepts plain paths or the file descriptors returned by
// the upload endpoint.
func decodeMediaFiles(v json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(items))
	for _, item := range items {
		var path string
		if err := json.Unmarshal(item, &path); err == nil {
			if path = strings.TrimSpace(path); path != "" {
				files = append(files, path)
			}
			continue
		}

		var file models.MediaFile
		if err := json.Unmarshal(item, &file); err != nil {
			return nil, err
		}
		if file.Path != "" {
			files = append(files, file.Path)
		}
	}
	return files, nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
