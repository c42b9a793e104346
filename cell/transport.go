package cell

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Payload is the result of a tile fetch: raw bytes, a decoded image, or both
type Payload struct {
	Data  []byte
	Image image.Image
}

// Transport loads the basemap cell for a key
// Implementations must be safe for concurrent use
type Transport interface {
	Fetch(ctx context.Context, key Key) (Payload, error)
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, key Key) (Payload, error)

func (f TransportFunc) Fetch(ctx context.Context, key Key) (Payload, error) {
	return f(ctx, key)
}

// HTTPTransport fetches tiles from a URL template
// Placeholders: {z} level, {x} {y} tile coordinates, {q} quadkey
type HTTPTransport struct {
	Template  string
	UserAgent string
	Client    *http.Client
}

// NewHTTPTransport creates a transport with a per-request timeout
func NewHTTPTransport(template, userAgent string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		Template:  template,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

// URL expands the template for key
func (t *HTTPTransport) URL(key Key) string {
	x, y, z := key.Tile()
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{q}", string(key),
	).Replace(t.Template)
}

func (t *HTTPTransport) Fetch(ctx context.Context, key Key) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL(key), nil)
	if err != nil {
		return Payload{}, err
	}
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return Payload{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("read body: %w", err)
	}
	return Payload{Data: data}, nil
}
