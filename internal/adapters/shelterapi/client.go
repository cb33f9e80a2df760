// Package shelterapi talks to the shelter-management backend, the system of
// record for kennels and reservations.
package shelterapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrNotFound     = errors.New("shelterapi: not found")
	ErrUnauthorized = errors.New("shelterapi: unauthorized")
	ErrForbidden    = errors.New("shelterapi: forbidden")
)

const maxAttempts = 4

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API (current endpoints first, legacy path shapes as fallback) ----

func (c *Client) ListKennels(ctx context.Context) ([]map[string]any, error) {
	candidates := []string{
		c.base + "/kennels",
		c.base + "/kennel/list", // legacy
	}
	var out []map[string]any
	return out, c.getFirst(ctx, candidates, &out)
}

func (c *Client) GetKennel(ctx context.Context, id string) (map[string]any, error) {
	candidates := []string{
		fmt.Sprintf("%s/kennels/%s", c.base, url.PathEscape(id)),
		fmt.Sprintf("%s/kennel/%s", c.base, url.PathEscape(id)), // legacy
	}
	var out map[string]any
	return out, c.getFirst(ctx, candidates, &out)
}

func (c *Client) GetStays(ctx context.Context, kennelID string, from, to time.Time) ([]map[string]any, error) {
	window := fmt.Sprintf("from=%s&to=%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	candidates := []string{
		fmt.Sprintf("%s/kennels/%s/stays?%s", c.base, url.PathEscape(kennelID), window),
		fmt.Sprintf("%s/kennel/%s/stays?%s", c.base, url.PathEscape(kennelID), window), // legacy
	}
	var out []map[string]any
	return out, c.getFirst(ctx, candidates, &out)
}

// ---- Internals ----

func (c *Client) getFirst(ctx context.Context, urls []string, out any) error {
	var last error
	for _, u := range urls {
		err := c.get(ctx, u, out)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err // non-404: stop early
		}
		last = err
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// get performs a rate-limited GET with retries and decodes JSON into out.
// Retries 429 and transient 5xx, honoring Retry-After when present.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-API-Key", c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "shelter-board/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if attempt < maxAttempts-1 && sleepCtx(ctx, backoff(attempt)) {
				continue
			}
			return lastErr
		}

		retriable, err := c.consume(resp, out)
		if err == nil {
			return nil
		}
		if !retriable {
			return err
		}
		lastErr = err
		wait := retryAfter(resp)
		if wait == 0 {
			wait = backoff(attempt)
		}
		if attempt < maxAttempts-1 && sleepCtx(ctx, wait) {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return lastErr
	}
	return lastErr
}

// consume drains one response, decoding on success. The bool reports whether
// the failure is worth retrying.
func (c *Client) consume(resp *http.Response, out any) (bool, error) {
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return false, json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case http.StatusNotFound:
		return false, ErrNotFound
	case http.StatusUnauthorized:
		return false, ErrUnauthorized
	case http.StatusForbidden:
		return false, ErrForbidden
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, fmt.Errorf("remote %d", resp.StatusCode)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt, plus up to +50% jitter so
// concurrent sync workers don't retry in lockstep.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<attempt) * 200 * time.Millisecond
	return base + time.Duration(rand.Float64()*0.5*float64(base))
}
