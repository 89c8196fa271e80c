package service

import "github.com/maheshrc27/crosspost/internal/models"

// ResolveContent returns the text to send to platform. Text on the platform
// entry wins; otherwise the shared content is used according to the post
// mode. The second return value is false when nothing applies.
func ResolveContent(post *models.ScheduledPost, platform string) (string, bool) {
	if entry, ok := post.Platforms[platform]; ok && entry.Content != "" {
		return entry.Content, true
	}

	switch post.PostMode {
	case models.PostModeIndividual:
		if text, ok := post.Content.PerPlatform[platform]; ok {
			return text, true
		}
	case models.PostModeUnified, "":
		return post.Content.Text, true
	}

	return "", false
}
