package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/maheshrc27/crosspost/internal/transfer"
)

const mastodonMaxMedia = 4

type mastodonClient struct {
	http        *http.Client
	instanceURL string
}

func NewMastodonClient(ctx context.Context, instanceURL, accessToken string) PlatformClient {
	return &mastodonClient{
		http:        bearerClient(ctx, accessToken),
		instanceURL: strings.TrimRight(instanceURL, "/"),
	}
}

func (m *mastodonClient) Post(ctx context.Context, text string) (string, error) {
	return m.status(ctx, transfer.MastodonStatusRequest{Status: text})
}

func (m *mastodonClient) PostWithMedia(ctx context.Context, text string, files []string) (string, error) {
	var mediaIDs []string
	for _, path := range firstN(files, mastodonMaxMedia) {
		var media transfer.MastodonMedia
		if err := doMultipart(ctx, m.http, m.instanceURL+"/api/v2/media", nil, "file", path, nil, &media); err != nil {
			return "", fmt.Errorf("mastodon media upload failed: %w", err)
		}
		mediaIDs = append(mediaIDs, media.ID)
	}
	return m.status(ctx, transfer.MastodonStatusRequest{Status: text, MediaIDs: mediaIDs})
}

func (m *mastodonClient) status(ctx context.Context, req transfer.MastodonStatusRequest) (string, error) {
	var status transfer.MastodonStatus
	if err := doJSON(ctx, m.http, http.MethodPost, m.instanceURL+"/api/v1/statuses", nil, req, &status); err != nil {
		return "", fmt.Errorf("mastodon post failed: %w", err)
	}
	if status.URL != "" {
		return status.URL, nil
	}
	return status.ID, nil
}
