// Package staticmap renders a recorded route as a static map image URL.
package staticmap

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/twpayne/go-polyline"
)

const (
	defaultBaseURL   = "https://maps.googleapis.com/maps/api/staticmap"
	defaultSize      = "400x400"
	defaultMaxPoints = 500
)

// ErrEmptyRoute is returned when there is nothing to draw.
var ErrEmptyRoute = errors.New("route has no points")

// Config configures the map provider.
type Config struct {
	APIKey    string
	BaseURL   string
	Size      string
	MaxPoints int
}

// Builder turns routes into static map URLs.
type Builder struct {
	apiKey    string
	baseURL   string
	size      string
	maxPoints int
}

// New constructs a Builder, filling unset options with defaults.
func New(cfg Config) *Builder {
	b := &Builder{apiKey: cfg.APIKey, baseURL: cfg.BaseURL, size: cfg.Size, maxPoints: cfg.MaxPoints}
	if b.baseURL == "" {
		b.baseURL = defaultBaseURL
	}
	if b.size == "" {
		b.size = defaultSize
	}
	if b.maxPoints <= 1 {
		b.maxPoints = defaultMaxPoints
	}
	return b
}

// Enabled reports whether an API key is configured.
func (b *Builder) Enabled() bool {
	return b != nil && b.apiKey != ""
}

// Encode returns the route as an encoded polyline. Coordinates are {lat, lng} pairs.
func Encode(route [][]float64) string {
	return string(polyline.EncodeCoords(route))
}

// URL returns the static map URL drawing route as a path.
func (b *Builder) URL(route [][]float64) (string, error) {
	if len(route) == 0 {
		return "", ErrEmptyRoute
	}

	query := url.Values{}
	query.Set("size", b.size)
	query.Set("path", "enc:"+Encode(thin(route, b.maxPoints)))
	if b.apiKey != "" {
		query.Set("key", b.apiKey)
	}
	return fmt.Sprintf("%s?%s", b.baseURL, query.Encode()), nil
}

// thin keeps at most max points, always including the first and last.
func thin(route [][]float64, max int) [][]float64 {
	if len(route) <= max {
		return route
	}
	step := float64(len(route)-1) / float64(max-1)
	out := make([][]float64, 0, max)
	for i := 0; i < max-1; i++ {
		out = append(out, route[int(float64(i)*step)])
	}
	return append(out, route[len(route)-1])
}
