// Package dom inspects and mutates the current page through a small catalog
// of injected scripts.
package dom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Executor runs a script against the current page and decodes its result
// into out. A nil out discards the result. This is the only capability the
// scanner needs from the browser engine.
type Executor interface {
	Evaluate(ctx context.Context, expression string, out any) error
}

// LoginFields carries the values found in a page's login inputs. Fields that
// were not found are empty strings.
type LoginFields struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Scanner struct {
	exec Executor
}

func NewScanner(exec Executor) *Scanner {
	return &Scanner{exec: exec}
}

// ScanLoginFields reads the current values of the page's login inputs.
// Read-only; a page without usable content yields empty fields.
func (s *Scanner) ScanLoginFields(ctx context.Context) (LoginFields, error) {
	var fields LoginFields
	if err := s.exec.Evaluate(ctx, scriptScanLoginFields, &fields); err != nil {
		return LoginFields{}, softenScanError("login field scan", err)
	}
	return fields, nil
}

// HasPasswordField reports whether the page contains a password input.
func (s *Scanner) HasPasswordField(ctx context.Context) (bool, error) {
	var has bool
	if err := s.exec.Evaluate(ctx, scriptHasPasswordField, &has); err != nil {
		return false, softenScanError("password field probe", err)
	}
	return has, nil
}

// FillLoginFields writes username into the first text/email input and
// password into the first password input. This mutates the page, so errors
// are surfaced rather than swallowed.
func (s *Scanner) FillLoginFields(ctx context.Context, username, password string) error {
	script := fmt.Sprintf(scriptFillLoginFields, escapeJS(username), escapeJS(password))
	if err := s.exec.Evaluate(ctx, script, nil); err != nil {
		return fmt.Errorf("failed to fill login fields: %w", err)
	}
	return nil
}

// ScanVideoSources returns the best source URL per <video> element on the
// page, in document order.
func (s *Scanner) ScanVideoSources(ctx context.Context) ([]string, error) {
	var sources []string
	if err := s.exec.Evaluate(ctx, scriptScanVideoSources, &sources); err != nil {
		return nil, softenScanError("video source scan", err)
	}
	return sources, nil
}

// softenScanError keeps the read-only scans best-effort: a script result of
// the wrong shape or a not-ready document means "no data found", while a
// dead context still propagates.
func softenScanError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	slog.Debug("scan returned no usable result", "op", op, "error", err)
	return nil
}

// escapeJS makes a value safe for interpolation into a double-quoted JS
// string literal in one of the catalog scripts.
func escapeJS(value string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
	).Replace(value)
}
