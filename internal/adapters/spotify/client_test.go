package spotify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer serves a fake token endpoint plus the given API handler.
func newTestServer(t *testing.T, api http.HandlerFunc) Config {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", api)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return Config{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/api/token",
	}
}

func TestSearchTracks(t *testing.T) {
	var gotQuery, gotMarket string
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		gotMarket = r.URL.Query().Get("market")
		_, _ = w.Write([]byte(`{"tracks":{"items":[
			{"id":"t1","name":"Song","artists":[{"id":"a1","name":"Artist"}],
			 "album":{"name":"Album","release_date":"2015-03-01"},
			 "popularity":42,"external_urls":{"spotify":"https://open.spotify.com/track/t1"}}
		]}}`))
	})

	c := NewClient(cfg, testLogger())
	tracks := c.SearchTracks(context.Background(), "sad rock", 5, "RU")

	if gotQuery != "sad rock" || gotMarket != "RU" {
		t.Errorf("query/market = %q/%q, want sad rock/RU", gotQuery, gotMarket)
	}
	if len(tracks) != 1 {
		t.Fatalf("SearchTracks() returned %d tracks, want 1", len(tracks))
	}
	tr := tracks[0]
	if tr.ID != "t1" || tr.Artist != "Artist" || tr.ReleaseDate != "2015-03-01" {
		t.Errorf("unexpected track mapping: %+v", tr)
	}
	if len(tr.ArtistIDs) != 1 || tr.ArtistIDs[0] != "a1" {
		t.Errorf("ArtistIDs = %v, want [a1]", tr.ArtistIDs)
	}
}

func TestSearchTracks_FailureDegradesToEmpty(t *testing.T) {
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := NewClient(cfg, testLogger())
	tracks := c.SearchTracks(context.Background(), "anything", 5, "US")

	if tracks != nil {
		t.Errorf("SearchTracks() on server error = %v, want nil", tracks)
	}
}

func TestSearchByMood_QueryAndMarket(t *testing.T) {
	var gotQuery, gotMarket string
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotMarket = r.URL.Query().Get("market")
		_, _ = w.Write([]byte(`{"tracks":{"items":[]}}`))
	})

	c := NewClient(cfg, testLogger())
	c.SearchByMood(context.Background(), "sad", "rock", "ru", 3)

	if gotQuery != "sad genre:rock" {
		t.Errorf("mood query = %q, want %q", gotQuery, "sad genre:rock")
	}
	if gotMarket != "RU" {
		t.Errorf("market = %q, want RU for language ru", gotMarket)
	}
}

func TestGetTrackInfo(t *testing.T) {
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/t9" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":"t9","name":"Verified","artists":[{"id":"a1","name":"Real Artist"}],
			"album":{"name":"LP","release_date":"2019-07-12"},
			"external_urls":{"spotify":"https://open.spotify.com/track/t9"}}`))
	})

	c := NewClient(cfg, testLogger())
	info, ok := c.GetTrackInfo(context.Background(), "t9")
	if !ok {
		t.Fatal("GetTrackInfo() ok = false, want true")
	}
	if info.Name != "Verified" || info.Artist != "Real Artist" || info.ReleaseDate != "2019-07-12" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestGetArtistsGenresBatch(t *testing.T) {
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"artists":[{"id":"a1","name":"X","genres":["russian rock"]},{"id":"a2","name":"Y","genres":[]}]}`))
	})

	c := NewClient(cfg, testLogger())
	got := c.GetArtistsGenresBatch(context.Background(), []string{"a1", "a2"})

	if len(got) != 2 {
		t.Fatalf("batch result size = %d, want 2", len(got))
	}
	if len(got["a1"]) != 1 || got["a1"][0] != "russian rock" {
		t.Errorf("genres for a1 = %v", got["a1"])
	}
}

func TestIsAvailable_NoCredentials(t *testing.T) {
	c := NewClient(Config{}, testLogger())
	if c.IsAvailable() {
		t.Error("IsAvailable() without credentials = true, want false")
	}
	if got := c.SearchTracks(context.Background(), "x", 1, "US"); got != nil {
		t.Errorf("unavailable client SearchTracks() = %v, want nil", got)
	}
}
