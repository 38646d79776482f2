package spotify

// Wire DTOs mirroring the Spotify Web API payloads. Kept separate from the
// domain mapping so API shape changes stay inside this package.

type wireSearchResponse struct {
	Tracks wireTrackPage `json:"tracks"`
}

type wireTrackPage struct {
	Items []wireTrack `json:"items"`
}

type wireTrack struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []wireArtist `json:"artists"`
	Album        wireAlbum    `json:"album"`
	Popularity   int          `json:"popularity"`
	PreviewURL   string       `json:"preview_url"`
	ExternalURLs wireURLs     `json:"external_urls"`
}

type wireArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type wireAlbum struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type wireURLs struct {
	Spotify string `json:"spotify"`
}

type wireArtistsResponse struct {
	Artists []wireArtist `json:"artists"`
}
