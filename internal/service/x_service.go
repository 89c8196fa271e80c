package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/maheshrc27/crosspost/internal/transfer"
)

const xMaxMedia = 4

type xClient struct {
	http    *http.Client
	baseURL string
}

// NewXClient returns a client that authenticates with an OAuth 2.0 user
// access token.
func NewXClient(ctx context.Context, baseURL, accessToken string) PlatformClient {
	return &xClient{
		http:    bearerClient(ctx, accessToken),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (x *xClient) Post(ctx context.Context, text string) (string, error) {
	return x.tweet(ctx, transfer.XTweetRequest{Text: text})
}

func (x *xClient) PostWithMedia(ctx context.Context, text string, files []string) (string, error) {
	var mediaIDs []string
	for _, path := range firstN(files, xMaxMedia) {
		if isVideoFile(path) {
			slog.Warn("x video upload is not supported, skipping file", "path", path)
			continue
		}

		var media transfer.XMediaResponse
		fields := map[string]string{"media_category": "tweet_image"}
		if err := doMultipart(ctx, x.http, x.baseURL+"/2/media/upload", nil, "media", path, fields, &media); err != nil {
			return "", fmt.Errorf("x media upload failed: %w", err)
		}
		mediaIDs = append(mediaIDs, media.Data.ID)
	}

	req := transfer.XTweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		req.Media = &transfer.XMedia{MediaIDs: mediaIDs}
	}
	return x.tweet(ctx, req)
}

func (x *xClient) tweet(ctx context.Context, req transfer.XTweetRequest) (string, error) {
	var resp transfer.XTweetResponse
	if err := doJSON(ctx, x.http, http.MethodPost, x.baseURL+"/2/tweets", nil, req, &resp); err != nil {
		return "", fmt.Errorf("x post failed: %w", err)
	}
	return resp.Data.ID, nil
}
