// Package hls resolves HLS master playlists to their best variant.
package hls

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	fetchTimeout = 5 * time.Second

	// Master playlists are small; anything beyond this is not worth scanning.
	maxManifestBytes = 8 << 20
)

const streamInfTag = "#EXT-X-STREAM-INF:"

// Attribute names are uppercase per RFC 8216, but manifests in the wild
// disagree, so the match is case-insensitive.
var resolutionRe = regexp.MustCompile(`(?i)RESOLUTION\s*=\s*(\d+)x(\d+)`)

// Resolver fetches master playlists and picks the variant with the largest
// pixel area. It never fails: any fetch or parse problem degrades to the
// input URL.
type Resolver struct {
	client    *http.Client
	userAgent string
}

func NewResolver(userAgent string) *Resolver {
	return &Resolver{
		client:    &http.Client{Timeout: fetchTimeout},
		userAgent: userAgent,
	}
}

// HighestVariant returns the absolute URL of the maximum-resolution variant
// in the manifest at manifestURL, or manifestURL itself when no variant with
// a RESOLUTION attribute is found. Ties keep the first-seen variant.
func (r *Resolver) HighestVariant(ctx context.Context, manifestURL string) string {
	req, err := http.NewRequestWithContext(ctx, "GET", manifestURL, nil)
	if err != nil {
		return manifestURL
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		slog.Debug("manifest fetch failed", "url", manifestURL, "error", err)
		return manifestURL
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("manifest fetch bad status", "url", manifestURL, "status", resp.Status)
		return manifestURL
	}

	best := bestVariantURI(io.LimitReader(resp.Body, maxManifestBytes))
	if best == "" {
		return manifestURL
	}

	resolved, err := resolveAgainst(manifestURL, best)
	if err != nil {
		slog.Debug("variant URL resolution failed", "base", manifestURL, "uri", best, "error", err)
		return manifestURL
	}
	return resolved
}

// bestVariantURI scans the manifest line by line. A stream-info tag carrying
// a RESOLUTION attribute opens a variant; the next non-tag line is its URI.
func bestVariantURI(manifest io.Reader) string {
	var (
		bestURI     string
		bestArea    int
		pendingArea = -1
	)

	scanner := bufio.NewScanner(manifest)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, streamInfTag) {
			pendingArea = -1
			if m := resolutionRe.FindStringSubmatch(line); m != nil {
				w, _ := strconv.Atoi(m[1])
				h, _ := strconv.Atoi(m[2])
				pendingArea = w * h
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		if pendingArea >= 0 {
			// strict > keeps the first-seen variant on ties
			if pendingArea > bestArea {
				bestArea = pendingArea
				bestURI = line
			}
			pendingArea = -1
		}
	}

	return bestURI
}

func resolveAgainst(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
