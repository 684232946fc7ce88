// Package download streams remote resources to disk with progress
// reporting. HLS playlists are fetched segment by segment; everything else
// is a plain chunked transfer.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/time/rate"
)

// chunkSize bounds how much body is held in memory between writes. Writes
// hit the file incrementally; the body is never buffered whole.
const chunkSize = 8 * 1024

// TotalUnknown marks a progress event whose total size is not known.
const TotalUnknown int64 = -1

// Event reports download progress. Total may be TotalUnknown, or an
// estimate for HLS streams.
type Event struct {
	Received int64
	Total    int64
}

// TransportError reports a failed transfer. Bytes already written stay on
// disk; cleaning up a partial file is the caller's decision.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure downloading %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Task describes one download.
type Task struct {
	URL        string
	OutputPath string
	Referer    string
	Overwrite  bool
	Label      string // progress bar caption, defaults to the file name
	OnProgress func(Event)
}

func (t *Task) emit(received, total int64) {
	if t.OnProgress != nil {
		t.OnProgress(Event{Received: received, Total: total})
	}
}

func (t *Task) label() string {
	if t.Label != "" {
		return t.Label
	}
	return filepath.Base(t.OutputPath)
}

type Tracker struct {
	client    *http.Client
	progress  *mpb.Progress
	limiter   *rate.Limiter
	userAgent string
}

// NewTracker builds a downloader. limitRate is bytes/second, zero for
// unlimited; showBars enables terminal progress rendering.
func NewTracker(userAgent string, limitRate float64, showBars bool) *Tracker {
	var limiter *rate.Limiter
	if limitRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(limitRate), int(limitRate))
	}

	var progress *mpb.Progress
	if showBars {
		progress = mpb.New()
	}

	return &Tracker{
		client:    &http.Client{},
		progress:  progress,
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// Wait blocks until all progress bars have rendered their final state.
func (t *Tracker) Wait() {
	if t.progress != nil {
		t.progress.Wait()
	}
}

// DownloadToFile streams task.URL into task.OutputPath. HLS playlist
// responses switch to the segment downloader; the saved result is then a
// transport stream, not the playlist text.
func (t *Tracker) DownloadToFile(ctx context.Context, task *Task) error {
	slog.Debug("starting download", "url", task.URL, "path", task.OutputPath)

	resp, err := t.get(ctx, task.URL, task.Referer)
	if err != nil {
		return &TransportError{URL: task.URL, Err: err}
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	if task.Overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(task.OutputPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer out.Close()

	if isHLS(resp) {
		slog.Debug("response is an HLS playlist, downloading segments")
		return t.downloadHLS(ctx, resp, task, out)
	}
	return t.downloadBody(ctx, resp, task, out)
}

func (t *Tracker) get(ctx context.Context, url, referer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp, nil
}

// downloadBody copies the response to disk in fixed-size chunks, emitting a
// progress event per chunk and a final one on completion.
func (t *Tracker) downloadBody(ctx context.Context, resp *http.Response, task *Task, out *os.File) error {
	total := resp.ContentLength
	if total < 0 {
		total = TotalUnknown
	}

	var reader io.Reader = resp.Body
	if t.limiter != nil {
		reader = &rateLimitedReader{r: reader, limiter: t.limiter, ctx: ctx}
	}

	var bar *mpb.Bar
	if t.progress != nil {
		bar = t.addBar(task.label(), max(total, 0))
		proxy := bar.ProxyReader(reader)
		defer proxy.Close()
		reader = proxy
	}

	var received int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := reader.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				abortBar(bar)
				return fmt.Errorf("failed to write output file: %w", werr)
			}
			received += int64(n)
			task.emit(received, total)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			abortBar(bar)
			return &TransportError{URL: task.URL, Err: rerr}
		}
	}

	if bar != nil {
		bar.SetTotal(received, true)
	}
	task.emit(received, received)
	slog.Debug("download finished", "path", task.OutputPath, "bytes", received)
	return nil
}

func (t *Tracker) addBar(label string, total int64) *mpb.Bar {
	return t.progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(label, decor.WC{W: len(label) + 1}),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Name(" | "),
			decor.AverageSpeed(decor.SizeB1024(0), "% .2f"),
		),
	)
}

func abortBar(bar *mpb.Bar) {
	if bar != nil {
		bar.Abort(true)
	}
}

type rateLimitedReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func (r *rateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.limiter.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
