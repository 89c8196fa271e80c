package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/maheshrc27/crosspost/configs"
	"github.com/maheshrc27/crosspost/internal/metrics"
	"github.com/maheshrc27/crosspost/internal/models"
	"golang.org/x/oauth2"
)

// PlatformClient posts to one social network.
type PlatformClient interface {
	Post(ctx context.Context, text string) (string, error)
	PostWithMedia(ctx context.Context, text string, files []string) (string, error)
}

// PlatformService is the set of platform clients configured at startup.
type PlatformService interface {
	Post(ctx context.Context, platform, text string) (string, error)
	PostWithMedia(ctx context.Context, platform, text string, files []string) (string, error)
	Enabled(platform string) bool
	Platforms() map[string]models.PlatformInfo
}

type platformService struct {
	clients map[string]PlatformClient
}

func NewPlatformService(clients map[string]PlatformClient) PlatformService {
	if clients == nil {
		clients = map[string]PlatformClient{}
	}
	return &platformService{clients: clients}
}

// NewPlatformClients builds a client for every platform whose credentials
// are present in cfg.
func NewPlatformClients(ctx context.Context, cfg config.Config, host MediaHostService) map[string]PlatformClient {
	httpClient := &http.Client{Timeout: 2 * time.Minute}
	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	clients := map[string]PlatformClient{}

	if cfg.BlueskyUsername != "" && cfg.BlueskyPassword != "" {
		clients[models.PlatformBluesky] = NewBlueskyClient(httpClient, cfg.BlueskyHost, cfg.BlueskyUsername, cfg.BlueskyPassword)
	}
	if cfg.XAccessToken != "" {
		clients[models.PlatformX] = NewXClient(oauthCtx, cfg.XAPIBaseURL, cfg.XAccessToken)
	}
	if cfg.ThreadsAccessToken != "" {
		clients[models.PlatformThreads] = NewThreadsClient(oauthCtx, cfg.ThreadsAPIBaseURL, cfg.ThreadsAccessToken, host)
	}
	if cfg.MisskeyToken != "" && cfg.MisskeyInstanceURL != "" {
		clients[models.PlatformMisskey] = NewMisskeyClient(httpClient, cfg.MisskeyInstanceURL, cfg.MisskeyToken)
	}
	if cfg.MastodonToken != "" && cfg.MastodonInstanceURL != "" {
		clients[models.PlatformMastodon] = NewMastodonClient(oauthCtx, cfg.MastodonInstanceURL, cfg.MastodonToken)
	}

	for _, name := range models.SupportedPlatforms {
		if _, ok := clients[name]; ok {
			slog.Info("platform client configured", "platform", name)
		} else {
			slog.Info("platform client disabled, credentials missing", "platform", name)
		}
	}

	return clients
}

func (s *platformService) client(platform string) (PlatformClient, error) {
	if !models.IsSupportedPlatform(platform) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
	c, ok := s.clients[platform]
	if !ok || c == nil {
		return nil, fmt.Errorf("%s %w", platform, ErrPlatformNotConfigured)
	}
	return c, nil
}

func (s *platformService) Post(ctx context.Context, platform, text string) (string, error) {
	c, err := s.client(platform)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.Post(ctx, text)
	metrics.PlatformLatency.WithLabelValues(platform).Observe(time.Since(start).Seconds())
	return resp, err
}

func (s *platformService) PostWithMedia(ctx context.Context, platform, text string, files []string) (string, error) {
	if len(files) == 0 {
		return s.Post(ctx, platform, text)
	}

	c, err := s.client(platform)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.PostWithMedia(ctx, text, files)
	metrics.PlatformLatency.WithLabelValues(platform).Observe(time.Since(start).Seconds())
	return resp, err
}

func (s *platformService) Enabled(platform string) bool {
	_, err := s.client(platform)
	return err == nil
}

func (s *platformService) Platforms() map[string]models.PlatformInfo {
	info := make(map[string]models.PlatformInfo, len(models.SupportedPlatforms))
	for _, name := range models.SupportedPlatforms {
		info[name] = models.PlatformInfo{
			Enabled: s.Enabled(name),
			Limit:   models.CharacterLimits[name],
		}
	}
	return info
}
