package scraper

import (
	"errors"
	"strings"
)

// ErrEmptyIdentifier is returned when a series URL is requested for an empty id.
var ErrEmptyIdentifier = errors.New("manga id cannot be empty")

// SeriesURL returns the page address for mangaID under baseURL.
func SeriesURL(baseURL, mangaID string) (string, error) {
	if mangaID == "" {
		return "", ErrEmptyIdentifier
	}
	return strings.TrimRight(baseURL, "/") + "/manga-" + mangaID, nil
}
