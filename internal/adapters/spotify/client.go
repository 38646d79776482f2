// Package spotify adapts the Spotify Web API to the external-catalog port.
// Calls never retry and never propagate transport errors; every failure
// degrades to an empty result. A circuit breaker stops hammering the API
// once it starts failing consistently.
package spotify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/moodtune/internal/core/ports"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	requestTimeout  = 10 * time.Second
	genresBatchSize = 50
)

// moodSearchKeywords maps a mood label to search terms; the first term
// leads the query.
var moodSearchKeywords = map[string][]string{
	"happy":     {"happy", "upbeat", "feel good", "party"},
	"sad":       {"sad", "melancholy", "heartbreak", "emotional"},
	"angry":     {"aggressive", "intense", "rage", "heavy"},
	"calm":      {"calm", "relaxing", "peaceful", "ambient"},
	"energetic": {"energetic", "workout", "power", "pump up"},
	"romantic":  {"love", "romantic", "ballad", "heart"},
}

// Config carries the client-credentials pair and optional URL overrides.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

// Client is the external-catalog adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	available  bool
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        *slog.Logger
}

var _ ports.ExternalCatalogProvider = (*Client)(nil)

// NewClient constructs the adapter. Availability is decided here, once:
// missing credentials yield a client whose every call returns empty.
func NewClient(cfg Config, log *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		available: cfg.ClientID != "" && cfg.ClientSecret != "",
		log:       log,
	}

	if c.available {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
		}
		c.httpClient = cc.Client(context.Background())
		c.httpClient.Timeout = requestTimeout
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "spotify",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("spotify breaker state change", "from", from.String(), "to", to.String())
		},
	})

	return c
}

// IsAvailable reports the availability decision made at construction.
func (c *Client) IsAvailable() bool {
	return c.available
}

// SearchTracks runs a free-text track search on the given market.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int, market string) []ports.RawExternalTrack {
	if !c.available || query == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprintf("%d", limit))
	if market != "" {
		params.Set("market", market)
	}

	body, err := c.get(ctx, "/search?"+params.Encode())
	if err != nil {
		c.log.Warn("spotify search failed", "query", query, "error", err)
		return nil
	}

	var parsed wireSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.log.Warn("spotify search decode failed", "error", err)
		return nil
	}

	out := make([]ports.RawExternalTrack, 0, len(parsed.Tracks.Items))
	for _, item := range parsed.Tracks.Items {
		out = append(out, mapTrack(item))
	}
	return out
}

// SearchByMood translates a mood into a search query, with optional genre
// qualifier, and picks the market from the requested language.
func (c *Client) SearchByMood(ctx context.Context, mood, genre, language string, limit int) []ports.RawExternalTrack {
	keywords, ok := moodSearchKeywords[strings.ToLower(mood)]
	if !ok {
		keywords = []string{mood}
	}

	queryParts := []string{keywords[0]}
	if genre != "" {
		queryParts = append(queryParts, "genre:"+genre)
	}

	market := "US"
	if language == "ru" {
		market = "RU"
	}

	return c.SearchTracks(ctx, strings.Join(queryParts, " "), limit, market)
}

// GetTrackInfo looks up one track by catalog ID for verification.
func (c *Client) GetTrackInfo(ctx context.Context, id string) (ports.ExternalTrackInfo, bool) {
	if !c.available || id == "" {
		return ports.ExternalTrackInfo{}, false
	}

	body, err := c.get(ctx, "/tracks/"+url.PathEscape(id))
	if err != nil {
		c.log.Warn("spotify track lookup failed", "id", id, "error", err)
		return ports.ExternalTrackInfo{}, false
	}

	var tr wireTrack
	if err := json.Unmarshal(body, &tr); err != nil {
		return ports.ExternalTrackInfo{}, false
	}

	return ports.ExternalTrackInfo{
		ID:          tr.ID,
		Name:        tr.Name,
		Artist:      joinArtists(tr.Artists),
		Album:       tr.Album.Name,
		ReleaseDate: tr.Album.ReleaseDate,
		URL:         tr.ExternalURLs.Spotify,
	}, true
}

// GetArtistsGenresBatch fetches genres for up to 50 artists per call.
func (c *Client) GetArtistsGenresBatch(ctx context.Context, ids []string) map[string][]string {
	if !c.available || len(ids) == 0 {
		return nil
	}

	result := make(map[string][]string)
	for start := 0; start < len(ids); start += genresBatchSize {
		end := start + genresBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		body, err := c.get(ctx, "/artists?ids="+url.QueryEscape(strings.Join(ids[start:end], ",")))
		if err != nil {
			c.log.Warn("spotify artists batch failed", "error", err)
			continue
		}

		var parsed wireArtistsResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			continue
		}
		for _, a := range parsed.Artists {
			if a.ID != "" {
				result[a.ID] = a.Genres
			}
		}
	}
	return result
}

// get runs one GET through the circuit breaker and returns the body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("spotify adapter: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("spotify adapter: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("spotify adapter: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("spotify adapter: %w", err)
		}
		return body, nil
	})
}

func mapTrack(item wireTrack) ports.RawExternalTrack {
	ids := make([]string, 0, len(item.Artists))
	for _, a := range item.Artists {
		ids = append(ids, a.ID)
	}
	return ports.RawExternalTrack{
		ID:          item.ID,
		Name:        item.Name,
		Artist:      joinArtists(item.Artists),
		ArtistIDs:   ids,
		Album:       item.Album.Name,
		ReleaseDate: item.Album.ReleaseDate,
		Popularity:  item.Popularity,
		URL:         item.ExternalURLs.Spotify,
	}
}

func joinArtists(artists []wireArtist) string {
	parts := make([]string, 0, len(artists))
	for _, a := range artists {
		parts = append(parts, a.Name)
	}
	return strings.Join(parts, ", ")
}
