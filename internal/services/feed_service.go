package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/config"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/cache"
)

// FeedService proxies the dashboard's external feeds (weather, news,
// slideshow, city autocomplete) and shields the upstreams behind the
// cache so every operator screen does not hammer them.
type FeedService struct {
	cfg    config.FeedConfig
	cache  *cache.RedisCache
	client *http.Client
}

// NewFeedService creates a new feed service
func NewFeedService(cfg config.FeedConfig, redisCache *cache.RedisCache) *FeedService {
	return &FeedService{
		cfg:   cfg,
		cache: redisCache,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Weather returns the current conditions for a city.
func (s *FeedService) Weather(ctx context.Context, city string) (json.RawMessage, error) {
	if city == "" {
		return nil, errors.New("city is required")
	}
	endpoint := s.cfg.WeatherURL + "?q=" + url.QueryEscape(city) + "&appid=" + url.QueryEscape(s.cfg.WeatherKey)
	return s.fetch(ctx, cache.WeatherCacheKey(city), endpoint)
}

// News returns the news feed shown on the dashboard side panel.
func (s *FeedService) News(ctx context.Context) (json.RawMessage, error) {
	return s.fetch(ctx, cache.NewsCacheKey(), s.cfg.NewsURL)
}

// Slideshow returns the rotating dashboard slideshow entries.
func (s *FeedService) Slideshow(ctx context.Context) (json.RawMessage, error) {
	return s.fetch(ctx, cache.SlideshowCacheKey(), s.cfg.SlideshowURL)
}

// Cities returns city autocomplete candidates for a prefix.
func (s *FeedService) Cities(ctx context.Context, prefix string) (json.RawMessage, error) {
	if len(prefix) < 2 {
		return json.RawMessage("[]"), nil
	}
	endpoint := s.cfg.CityURL + "?q=" + url.QueryEscape(prefix)
	return s.fetch(ctx, cache.CityCacheKey(prefix), endpoint)
}

func (s *FeedService) fetch(ctx context.Context, cacheKey, endpoint string) (json.RawMessage, error) {
	if endpoint == "" {
		return nil, errors.New("feed is not configured")
	}

	if s.cache != nil {
		var cached json.RawMessage
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build feed request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "feed request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read feed response")
	}
	if !json.Valid(body) {
		return nil, errors.New("feed returned invalid JSON")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, json.RawMessage(body), s.cfg.CacheTTL); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache feed response")
		}
	}
	return body, nil
}
