package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/dom"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/hls"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/media"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/player"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/pkg/download"
)

func newScanCommand(a *app) *cobra.Command {
	var (
		output    string
		play      bool
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "scan URL",
		Short: "Load a page, find its video sources and play or save the best one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return a.runScan(ctx, cmdArgs[0], output, play, overwrite)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "Save the selected source to this file")
	f.BoolVar(&play, "play", false, "Hand the selected source to a media player")
	f.BoolVar(&overwrite, "overwrite", false, "Overwrite the output file if it exists")
	return cmd
}

func (a *app) runScan(ctx context.Context, pageURL, output string, play, overwrite bool) error {
	session, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	slog.Info("loading page", "url", pageURL)
	if err := session.Navigate(pageURL); err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	a.recordVisit(session)

	scanner := dom.NewScanner(session)
	sources, err := scanner.ScanVideoSources(ctx)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		slog.Info("no video sources found on page")
		return nil
	}
	slog.Debug("scanned video sources", "count", len(sources))

	selector := media.NewSelector(hls.NewResolver(a.userAgent()))
	best := selector.SelectBestSources(ctx, sources)

	chosen, err := a.chooseSource(best)
	if err != nil {
		return err
	}

	referer, _ := session.Location()

	if play {
		return player.Play(ctx, chosen)
	}
	if output != "" {
		return a.saveSource(ctx, chosen, referer, output, overwrite)
	}

	fmt.Println(chosen)
	return nil
}

// chooseSource returns the single candidate directly; multiple candidates
// mean multiple <video> elements, and only the user knows which one counts.
func (a *app) chooseSource(sources []string) (string, error) {
	if len(sources) == 1 {
		return sources[0], nil
	}

	fmt.Println("Multiple video sources found:")
	for i, src := range sources {
		fmt.Printf("  [%d] %s\n", i+1, src)
	}
	line, err := a.promptLine("Select source [1-%d]: ", len(sources))
	if err != nil {
		return "", err
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(sources) {
		return "", fmt.Errorf("invalid selection: %q", line)
	}
	return sources[n-1], nil
}

func (a *app) saveSource(ctx context.Context, src, referer, output string, overwrite bool) error {
	tracker := download.NewTracker(a.userAgent(), a.rateLimit, true)
	defer tracker.Wait()

	return tracker.DownloadToFile(ctx, &download.Task{
		URL:        src,
		OutputPath: output,
		Referer:    referer,
		Overwrite:  overwrite,
	})
}

// recordVisit appends the loaded page to the profile history. A failed
// append never blocks the scan itself.
func (a *app) recordVisit(session pageInfo) {
	loc, err := session.Location()
	if err != nil || loc == "" {
		return
	}
	title, _ := session.Title()
	if err := a.profile.History.Append(title, loc); err != nil {
		slog.Warn("failed to record history entry", "error", err)
	}
}

type pageInfo interface {
	Location() (string, error)
	Title() (string, error)
}
