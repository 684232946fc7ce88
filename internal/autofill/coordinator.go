// Package autofill decides when stored credentials may be injected into a
// freshly loaded page.
package autofill

import (
	"context"
	"fmt"
	"net/url"

	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/vault"
)

// Outcome is the terminal state reached for one page load.
type Outcome int

const (
	// OutcomeNoMatch: no credential stored for the page's domain.
	OutcomeNoMatch Outcome = iota
	// OutcomeNoPasswordField: a credential exists but the page has no
	// password input, so no prompt is shown. This keeps logout and landing
	// pages on a saved domain from nagging the user.
	OutcomeNoPasswordField
	// OutcomeDeclined: the user answered the confirmation prompt with no.
	OutcomeDeclined
	// OutcomeFilled: credentials were injected into the page.
	OutcomeFilled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no credentials for domain"
	case OutcomeNoPasswordField:
		return "no password field on page"
	case OutcomeDeclined:
		return "declined by user"
	case OutcomeFilled:
		return "filled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// CredentialSource looks up a stored credential by exact domain.
type CredentialSource interface {
	Get(domain string) (vault.Credential, bool)
}

// PageScanner is the slice of the DOM scanner the coordinator needs.
type PageScanner interface {
	HasPasswordField(ctx context.Context) (bool, error)
	FillLoginFields(ctx context.Context, username, password string) error
}

// ConfirmFunc asks the user whether the named credential may be injected.
// The answer is an explicit input to the state machine; the coordinator
// itself never talks to a UI.
type ConfirmFunc func(domain, username string) bool

type Coordinator struct {
	store   CredentialSource
	scanner PageScanner
	confirm ConfirmFunc
}

func NewCoordinator(store CredentialSource, scanner PageScanner, confirm ConfirmFunc) *Coordinator {
	return &Coordinator{store: store, scanner: scanner, confirm: confirm}
}

// OnPageLoaded runs the autofill state machine for the page at pageURL.
// Credentials are only ever injected after a stored record matched the
// exact domain, a password field was seen, and the user confirmed.
func (c *Coordinator) OnPageLoaded(ctx context.Context, pageURL string) (Outcome, error) {
	// the lookup key is the portless hostname, the same key capture saves under
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return OutcomeNoMatch, nil
	}

	cred, ok := c.store.Get(u.Hostname())
	if !ok {
		return OutcomeNoMatch, nil
	}

	// The outcome is only meaningful when err is nil.
	hasPassword, err := c.scanner.HasPasswordField(ctx)
	if err != nil {
		return 0, err
	}
	if !hasPassword {
		return OutcomeNoPasswordField, nil
	}

	if !c.confirm(cred.Domain, cred.Username) {
		return OutcomeDeclined, nil
	}

	if err := c.scanner.FillLoginFields(ctx, cred.Username, cred.Password); err != nil {
		return 0, fmt.Errorf("confirmed autofill failed: %w", err)
	}
	return OutcomeFilled, nil
}
