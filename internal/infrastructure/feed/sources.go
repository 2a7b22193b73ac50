package feed

import (
	"net/url"
	"strings"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// Endpoint names one vendor feed. Path is resolved against the base URL
// unless it is already absolute.
type Endpoint struct {
	Name string
	Path string
}

// NewSources creates one feed client per endpoint
func NewSources(baseURL string, endpoints []Endpoint, opts Options) []domain.ProductSource {
	sources := make([]domain.ProductSource, 0, len(endpoints))
	for _, endpoint := range endpoints {
		sources = append(sources, NewClient(endpoint.Name, ResolveURL(baseURL, endpoint.Path), opts))
	}
	return sources
}

// ResolveURL joins a feed path onto the base URL
func ResolveURL(baseURL, path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
