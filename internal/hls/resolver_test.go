package hls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveManifest(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHighestVariantPicksLargestArea(t *testing.T) {
	srv := serveManifest(t, `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=360x640
low/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1080x1920
high/index.m3u8
`)

	r := NewResolver("")
	got := r.HighestVariant(context.Background(), srv.URL+"/master.m3u8")
	want := srv.URL + "/high/index.m3u8"
	if got != want {
		t.Errorf("HighestVariant = %q, want %q", got, want)
	}
}

func TestHighestVariantNoResolutionReturnsInput(t *testing.T) {
	srv := serveManifest(t, `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=800000
low/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000
high/index.m3u8
`)

	r := NewResolver("")
	in := srv.URL + "/master.m3u8"
	if got := r.HighestVariant(context.Background(), in); got != in {
		t.Errorf("HighestVariant = %q, want input %q", got, in)
	}
}

func TestHighestVariantNetworkFailureReturnsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver("")
	in := srv.URL + "/master.m3u8"
	if got := r.HighestVariant(context.Background(), in); got != in {
		t.Errorf("HighestVariant = %q, want input %q", got, in)
	}

	dead := "http://127.0.0.1:1/master.m3u8"
	if got := r.HighestVariant(context.Background(), dead); got != dead {
		t.Errorf("HighestVariant on unreachable host = %q, want input", got)
	}
}

func TestHighestVariantCaseInsensitiveAttribute(t *testing.T) {
	srv := serveManifest(t, `#EXTM3U
#EXT-X-STREAM-INF:bandwidth=800000,resolution=1280x720
hd.m3u8
`)

	r := NewResolver("")
	got := r.HighestVariant(context.Background(), srv.URL+"/master.m3u8")
	if want := srv.URL + "/hd.m3u8"; got != want {
		t.Errorf("HighestVariant = %q, want %q", got, want)
	}
}

func TestHighestVariantTieKeepsFirstSeen(t *testing.T) {
	srv := serveManifest(t, `#EXTM3U
#EXT-X-STREAM-INF:RESOLUTION=1280x720,BANDWIDTH=1
first.m3u8
#EXT-X-STREAM-INF:RESOLUTION=1280x720,BANDWIDTH=2
second.m3u8
`)

	r := NewResolver("")
	got := r.HighestVariant(context.Background(), srv.URL+"/master.m3u8")
	if !strings.HasSuffix(got, "/first.m3u8") {
		t.Errorf("tie broken against first-seen variant: got %q", got)
	}
}

func TestBestVariantURISkipsInterleavedTags(t *testing.T) {
	manifest := `#EXTM3U
#EXT-X-STREAM-INF:RESOLUTION=640x360
#EXT-X-SOME-OTHER-TAG:FOO=1
low.m3u8
`
	if got := bestVariantURI(strings.NewReader(manifest)); got != "low.m3u8" {
		t.Errorf("bestVariantURI = %q, want %q", got, "low.m3u8")
	}
}

func TestResolveAgainstRelative(t *testing.T) {
	got, err := resolveAgainst("https://cdn.example.com/v1/master.m3u8", "v2/index.m3u8")
	if err != nil {
		t.Fatalf("resolveAgainst: %v", err)
	}
	if want := "https://cdn.example.com/v1/v2/index.m3u8"; got != want {
		t.Errorf("resolveAgainst = %q, want %q", got, want)
	}

	abs, err := resolveAgainst("https://cdn.example.com/v1/master.m3u8", "https://other.example.com/x.m3u8")
	if err != nil {
		t.Fatalf("resolveAgainst: %v", err)
	}
	if abs != "https://other.example.com/x.m3u8" {
		t.Errorf("absolute URI rewritten: %q", abs)
	}
}
