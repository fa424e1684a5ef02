package heroes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const redacted = "***"

// client performs single-attempt JSON GETs against an upstream.
type client struct {
	HTTP   *http.Client
	Logger *zap.Logger
	token  string
}

func newClient(hc *http.Client, logger *zap.Logger, token string) *client {
	if hc == nil {
		// no timeout beyond the transport defaults; callers cancel via ctx
		hc = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &client{HTTP: hc, Logger: logger, token: token}
}

// joinURL joins base and path with exactly one slash between them.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// redact hides the API token path segment so it never reaches logs or errors.
func (c *client) redact(u string) string {
	if c.token == "" {
		return u
	}
	u = strings.ReplaceAll(u, "/"+url.PathEscape(c.token)+"/", "/"+redacted+"/")
	return strings.ReplaceAll(u, "/"+c.token+"/", "/"+redacted+"/")
}

func (c *client) getJSON(ctx context.Context, rawURL string, out any) error {
	shown := c.redact(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransportError{URL: shown, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("upstream request failed", zap.String("url", shown), zap.Error(err))
		return &TransportError{URL: shown, Err: err}
	}
	defer resp.Body.Close()

	c.Logger.Debug("upstream request",
		zap.String("url", shown),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &TransportError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			URL:        shown,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrMalformedResponse, shown, err)
	}
	return nil
}
