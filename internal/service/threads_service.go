package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/maheshrc27/crosspost/internal/transfer"
)

const threadsMaxCarouselItems = 10

type threadsClient struct {
	http    *http.Client
	baseURL string
	host    MediaHostService

	mu     sync.Mutex
	userID string
}

// NewThreadsClient returns a Threads client. Media is published through host,
// which may be nil when only text posts are needed.
func NewThreadsClient(ctx context.Context, baseURL, accessToken string, host MediaHostService) PlatformClient {
	return &threadsClient{
		http:    bearerClient(ctx, accessToken),
		baseURL: strings.TrimRight(baseURL, "/"),
		host:    host,
	}
}

func (t *threadsClient) me(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.userID != "" {
		return t.userID, nil
	}

	var user transfer.ThreadsID
	if err := doJSON(ctx, t.http, http.MethodGet, t.baseURL+"/me?fields=id", nil, nil, &user); err != nil {
		return "", fmt.Errorf("threads user lookup failed: %w", err)
	}
	t.userID = user.ID
	return t.userID, nil
}

func (t *threadsClient) Post(ctx context.Context, text string) (string, error) {
	return t.publish(ctx, url.Values{"media_type": {"TEXT"}, "text": {text}})
}

func (t *threadsClient) PostWithMedia(ctx context.Context, text string, files []string) (string, error) {
	if t.host == nil {
		return "", errors.New("threads media posts require media hosting")
	}

	files = firstN(files, threadsMaxCarouselItems)
	if len(files) == 1 {
		params, err := t.mediaParams(ctx, files[0])
		if err != nil {
			return "", err
		}
		params.Set("text", text)
		return t.publish(ctx, params)
	}

	userID, err := t.me(ctx)
	if err != nil {
		return "", err
	}

	children := make([]string, 0, len(files))
	for _, path := range files {
		params, err := t.mediaParams(ctx, path)
		if err != nil {
			return "", err
		}
		params.Set("is_carousel_item", "true")

		id, err := t.container(ctx, userID, params)
		if err != nil {
			return "", err
		}
		children = append(children, id)
	}

	return t.publish(ctx, url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
		"text":       {text},
	})
}

// mediaParams hosts the file and returns the container fields for it.
func (t *threadsClient) mediaParams(ctx context.Context, path string) (url.Values, error) {
	publicURL, err := t.host.Host(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("threads media hosting failed: %w", err)
	}
	if isVideoFile(path) {
		return url.Values{"media_type": {"VIDEO"}, "video_url": {publicURL}}, nil
	}
	return url.Values{"media_type": {"IMAGE"}, "image_url": {publicURL}}, nil
}

func (t *threadsClient) container(ctx context.Context, userID string, params url.Values) (string, error) {
	var created transfer.ThreadsID
	if err := doForm(ctx, t.http, fmt.Sprintf("%s/%s/threads", t.baseURL, userID), params, &created); err != nil {
		return "", fmt.Errorf("threads container creation failed: %w", err)
	}
	return created.ID, nil
}

func (t *threadsClient) publish(ctx context.Context, params url.Values) (string, error) {
	userID, err := t.me(ctx)
	if err != nil {
		return "", err
	}

	containerID, err := t.container(ctx, userID, params)
	if err != nil {
		return "", err
	}

	var published transfer.ThreadsID
	endpoint := fmt.Sprintf("%s/%s/threads_publish", t.baseURL, userID)
	if err := doForm(ctx, t.http, endpoint, url.Values{"creation_id": {containerID}}, &published); err != nil {
		return "", fmt.Errorf("threads publish failed: %w", err)
	}
	return published.ID, nil
}
