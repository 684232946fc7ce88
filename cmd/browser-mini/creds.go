package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/dom"
)

func newCredsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage saved login credentials",
	}
	cmd.AddCommand(
		newCredsListCommand(a),
		newCredsSetCommand(a),
		newCredsRemoveCommand(a),
		newCredsCaptureCommand(a),
	)
	return cmd
}

func newCredsListCommand(a *app) *cobra.Command {
	var showPasswords bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			creds := a.profile.Credentials.List()
			if len(creds) == 0 {
				fmt.Println("No saved credentials.")
				return nil
			}
			for _, c := range creds {
				password := strings.Repeat("*", 8)
				if showPasswords {
					password = c.Password
				}
				fmt.Printf("%s\t%s\t%s\n", c.Domain, c.Username, password)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPasswords, "show", false, "Print passwords in clear text")
	return cmd
}

func newCredsSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set DOMAIN USERNAME PASSWORD",
		Short: "Save or replace the credential for a domain",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if err := a.profile.Credentials.Put(cmdArgs[0], cmdArgs[1], cmdArgs[2]); err != nil {
				return err
			}
			slog.Info("credential saved", "domain", cmdArgs[0])
			return nil
		},
	}
}

func newCredsRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm DOMAIN",
		Short: "Delete the credential for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			if err := a.profile.Credentials.Delete(cmdArgs[0]); err != nil {
				return err
			}
			slog.Info("credential removed", "domain", cmdArgs[0])
			return nil
		},
	}
}

func newCredsCaptureCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "capture URL",
		Short: "Load a login page and save the values typed into its form",
		Long: "Loads the page in a visible browser window, waits until you confirm, " +
			"then reads the login form and stores its values for the page's domain.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return a.runCapture(ctx, cmdArgs[0])
		},
	}
}

func (a *app) runCapture(ctx context.Context, pageURL string) error {
	// capture needs typing, so the window is always shown
	a.args.Browser = true

	session, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	slog.Info("loading page", "url", pageURL)
	if err := session.Navigate(pageURL); err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}

	if !a.promptYesNo("Type your login into the page, then confirm here. Capture now? [y/N] ") {
		fmt.Println("Capture cancelled.")
		return nil
	}

	fields, err := dom.NewScanner(session).ScanLoginFields(ctx)
	if err != nil {
		return err
	}
	if fields.Username == "" && fields.Password == "" {
		fmt.Println("No filled login fields found on the page.")
		return nil
	}

	loc, err := session.Location()
	if err != nil {
		return err
	}
	parsed, err := url.Parse(loc)
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("cannot determine the page's domain from %q", loc)
	}
	domain := parsed.Hostname()

	if !a.promptYesNo("Save login for %s (user %s)? [y/N] ", domain, fields.Username) {
		fmt.Println("Not saved.")
		return nil
	}
	if err := a.profile.Credentials.Put(domain, fields.Username, fields.Password); err != nil {
		return err
	}
	slog.Info("credential saved", "domain", domain)
	return nil
}
