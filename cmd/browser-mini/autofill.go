package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/autofill"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/dom"
)

func newAutofillCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "autofill URL",
		Short: "Load a page and fill its login form from saved credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return a.runAutofill(ctx, cmdArgs[0])
		},
	}
}

func (a *app) runAutofill(ctx context.Context, pageURL string) error {
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

	// match on the URL the page actually ended up at, not the one typed
	loc, err := session.Location()
	if err != nil {
		return err
	}

	coordinator := autofill.NewCoordinator(
		a.profile.Credentials,
		dom.NewScanner(session),
		func(domain, username string) bool {
			return a.promptYesNo("Fill saved login for %s (user %s)? [y/N] ", domain, username)
		},
	)

	outcome, err := coordinator.OnPageLoaded(ctx, loc)
	if err != nil {
		return err
	}

	switch outcome {
	case autofill.OutcomeFilled:
		slog.Info("login form filled", "url", loc)
	case autofill.OutcomeNoMatch:
		slog.Info("no saved credentials for this site", "url", loc)
	case autofill.OutcomeNoPasswordField:
		slog.Info("page has no password field, nothing to fill", "url", loc)
	case autofill.OutcomeDeclined:
		slog.Info("autofill declined")
	}

	// with a visible window, leave the page up so the form can be submitted
	if a.args.Browser && outcome == autofill.OutcomeFilled {
		fmt.Println("Browser window stays open; press Ctrl-C to quit.")
		<-ctx.Done()
	}
	return nil
}
