package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/browser"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/profile"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/pkg/cli"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/pkg/dirs"
	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/pkg/logger"
)

// app carries the state every command needs: parsed flags, the opened
// profile and the resolved rate limit.
type app struct {
	args      *cli.Args
	profile   *profile.Manager
	rateLimit float64
	stdin     *bufio.Reader
}

func main() {
	a := &app{args: &cli.Args{}, stdin: bufio.NewReader(os.Stdin)}

	if err := newRootCommand(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "browser-mini",
		Short:         "Scan pages for media, manage saved logins and keep a browsing profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return a.setup()
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&a.args.Debug, "debug", "d", false, "Enable debug mode")
	pf.BoolVar(&a.args.Browser, "browser", false, "Show browser window")
	pf.StringVarP(&a.args.LogFile, "log", "l", "", "Path to log file. If not set, logs will only be printed to console. WARNING: This will append to the log file.")
	pf.StringVarP(&a.args.LimitRate, "rate", "r", "inf", "Maximum download rate")
	pf.StringVar(&a.args.DataDir, "data-dir", "", "Override the profile data directory")
	pf.StringVar(&a.args.UserAgent, "user-agent", "", "Override the browser user agent")

	cmd.AddCommand(
		newScanCommand(a),
		newAutofillCommand(a),
		newCredsCommand(a),
		newFavCommand(a),
		newHistoryCommand(a),
	)
	return cmd
}

func (a *app) setup() error {
	logger.InitDefaultLogger(a.args.Debug, a.args.LogFile)

	rateLimit, err := cli.ParseRateLimit(a.args.LimitRate)
	if err != nil {
		return fmt.Errorf("failed to parse rate limit: %w", err)
	}
	a.rateLimit = rateLimit

	profilePath := ""
	if a.args.DataDir != "" {
		if err := os.MkdirAll(a.args.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		profilePath = filepath.Join(a.args.DataDir, "profile.json")
	} else {
		profilePath, err = dirs.ProfilePath()
		if err != nil {
			return err
		}
	}

	a.profile = profile.Open(profilePath)
	return nil
}

func (a *app) userAgent() string {
	if a.args.UserAgent != "" {
		return a.args.UserAgent
	}
	return browser.DefaultUserAgent
}

func (a *app) newSession(ctx context.Context) (*browser.Session, error) {
	return browser.NewSession(ctx, !a.args.Browser, a.args.Debug)
}

// promptYesNo asks on stdout and reads one line; anything but y/yes is no.
func (a *app) promptYesNo(format string, args ...any) bool {
	fmt.Printf(format, args...)
	line, err := a.stdin.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (a *app) promptLine(format string, args ...any) (string, error) {
	fmt.Printf(format, args...)
	line, err := a.stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
