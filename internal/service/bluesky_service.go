package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/crosspost/internal/transfer"
	"github.com/maheshrc27/crosspost/pkg/utils"
)

const (
	blueskyMaxImages     = 4
	blueskyRefreshMargin = time.Minute
)

type blueskyClient struct {
	http       *http.Client
	host       string
	identifier string
	password   string

	mu      sync.Mutex
	session *transfer.BlueskySession
}

func NewBlueskyClient(httpClient *http.Client, host, identifier, password string) PlatformClient {
	return &blueskyClient{
		http:       httpClient,
		host:       strings.TrimRight(host, "/"),
		identifier: identifier,
		password:   password,
	}
}

func (b *blueskyClient) xrpc(method string) string {
	return b.host + "/xrpc/" + method
}

// authorize returns a session whose access token is not about to expire,
// refreshing or re-creating it as needed.
func (b *blueskyClient) authorize(ctx context.Context) (*transfer.BlueskySession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session != nil {
		exp, err := utils.TokenExpiry(b.session.AccessJwt)
		if err == nil && time.Until(exp) > blueskyRefreshMargin {
			return b.session, nil
		}

		var refreshed transfer.BlueskySession
		header := http.Header{"Authorization": {"Bearer " + b.session.RefreshJwt}}
		err = doJSON(ctx, b.http, http.MethodPost, b.xrpc("com.atproto.server.refreshSession"), header, nil, &refreshed)
		if err == nil {
			b.session = &refreshed
			return b.session, nil
		}
		slog.Info("bluesky session refresh failed, logging in again", "error", err)
	}

	var session transfer.BlueskySession
	body := map[string]string{"identifier": b.identifier, "password": b.password}
	if err := doJSON(ctx, b.http, http.MethodPost, b.xrpc("com.atproto.server.createSession"), nil, body, &session); err != nil {
		return nil, fmt.Errorf("bluesky login failed: %w", err)
	}
	b.session = &session
	return b.session, nil
}

func (b *blueskyClient) Post(ctx context.Context, text string) (string, error) {
	return b.createPost(ctx, text, nil)
}

func (b *blueskyClient) PostWithMedia(ctx context.Context, text string, files []string) (string, error) {
	session, err := b.authorize(ctx)
	if err != nil {
		return "", err
	}

	var images []transfer.BlueskyImage
	for _, path := range files {
		if len(images) == blueskyMaxImages {
			break
		}
		blob, err := b.uploadBlob(ctx, session, path)
		if err != nil {
			return "", err
		}
		if blob == nil {
			slog.Warn("bluesky accepts images only, skipping file", "path", path)
			continue
		}
		images = append(images, transfer.BlueskyImage{Image: blob.Blob})
	}

	var embed *transfer.BlueskyEmbed
	if len(images) > 0 {
		embed = &transfer.BlueskyEmbed{Type: "app.bsky.embed.images", Images: images}
	}
	return b.createPost(ctx, text, embed)
}

func (b *blueskyClient) uploadBlob(ctx context.Context, session *transfer.BlueskySession, path string) (*transfer.BlueskyBlob, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !filetype.IsImage(content) {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.xrpc("com.atproto.repo.uploadBlob"), bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessJwt)
	req.Header.Set("Content-Type", detectContentType(content))

	var blob transfer.BlueskyBlob
	if err := send(b.http, req, &blob); err != nil {
		return nil, fmt.Errorf("bluesky blob upload failed: %w", err)
	}
	return &blob, nil
}

func (b *blueskyClient) createPost(ctx context.Context, text string, embed *transfer.BlueskyEmbed) (string, error) {
	session, err := b.authorize(ctx)
	if err != nil {
		return "", err
	}

	body := transfer.BlueskyCreateRecord{
		Repo:       session.Did,
		Collection: "app.bsky.feed.post",
		Record: transfer.BlueskyPostRecord{
			Type:      "app.bsky.feed.post",
			Text:      text,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Embed:     embed,
		},
	}

	var ref transfer.BlueskyRecordRef
	header := http.Header{"Authorization": {"Bearer " + session.AccessJwt}}
	if err := doJSON(ctx, b.http, http.MethodPost, b.xrpc("com.atproto.repo.createRecord"), header, body, &ref); err != nil {
		return "", fmt.Errorf("bluesky post failed: %w", err)
	}
	return ref.URI, nil
}
