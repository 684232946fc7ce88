package autofill

import (
	"context"
	"fmt"
	"testing"

	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/vault"
)

type fakeStore map[string]vault.Credential

func (f fakeStore) Get(domain string) (vault.Credential, bool) {
	c, ok := f[domain]
	return c, ok
}

type fakeScanner struct {
	hasPassword bool
	probeErr    error
	fillErr     error

	probed         bool
	filledUsername string
	filledPassword string
	fillCalls      int
}

func (f *fakeScanner) HasPasswordField(context.Context) (bool, error) {
	f.probed = true
	return f.hasPassword, f.probeErr
}

func (f *fakeScanner) FillLoginFields(_ context.Context, username, password string) error {
	f.fillCalls++
	f.filledUsername = username
	f.filledPassword = password
	return f.fillErr
}

func storeWith(domain string) fakeStore {
	return fakeStore{domain: {Domain: domain, Username: "alice", Password: "secret"}}
}

func TestNoMatchTerminatesEarly(t *testing.T) {
	scanner := &fakeScanner{hasPassword: true}
	c := NewCoordinator(fakeStore{}, scanner, func(string, string) bool { return true })

	got, err := c.OnPageLoaded(context.Background(), "https://example.com/login")
	if err != nil {
		t.Fatal(err)
	}
	if got != OutcomeNoMatch {
		t.Errorf("outcome = %v", got)
	}
	if scanner.probed || scanner.fillCalls != 0 {
		t.Error("page touched without a stored credential")
	}
}

func TestExactDomainMatchOnly(t *testing.T) {
	// subdomains are different keys on purpose
	for _, pageURL := range []string{
		"https://www.example.com/login",
		"https://example.org/login",
	} {
		scanner := &fakeScanner{hasPassword: true}
		c := NewCoordinator(storeWith("example.com"), scanner, func(string, string) bool { return true })

		got, err := c.OnPageLoaded(context.Background(), pageURL)
		if err != nil {
			t.Fatal(err)
		}
		if got != OutcomeNoMatch {
			t.Errorf("%s: outcome = %v, want NoMatch", pageURL, got)
		}
	}
}

// A credential captured on a ported URL is stored under the bare hostname,
// so a later visit to the same ported page must still match.
func TestPortIgnoredInDomainMatch(t *testing.T) {
	scanner := &fakeScanner{hasPassword: true}
	c := NewCoordinator(storeWith("example.com"), scanner, func(string, string) bool { return true })

	got, err := c.OnPageLoaded(context.Background(), "https://example.com:8443/login")
	if err != nil {
		t.Fatal(err)
	}
	if got != OutcomeFilled {
		t.Errorf("outcome = %v, want Filled", got)
	}
	if scanner.filledUsername != "alice" || scanner.filledPassword != "secret" {
		t.Errorf("filled %q/%q", scanner.filledUsername, scanner.filledPassword)
	}
}

func TestNoPasswordFieldSkipsPrompt(t *testing.T) {
	scanner := &fakeScanner{hasPassword: false}
	prompted := false
	c := NewCoordinator(storeWith("example.com"), scanner, func(string, string) bool {
		prompted = true
		return true
	})

	got, err := c.OnPageLoaded(context.Background(), "https://example.com/logout")
	if err != nil {
		t.Fatal(err)
	}
	if got != OutcomeNoPasswordField {
		t.Errorf("outcome = %v", got)
	}
	if prompted {
		t.Error("user prompted although the page has no password field")
	}
	if scanner.fillCalls != 0 {
		t.Error("fill ran without a password field")
	}
}

func TestDeclinedNeverFills(t *testing.T) {
	scanner := &fakeScanner{hasPassword: true}
	c := NewCoordinator(storeWith("example.com"), scanner, func(string, string) bool { return false })

	got, err := c.OnPageLoaded(context.Background(), "https://example.com/login")
	if err != nil {
		t.Fatal(err)
	}
	if got != OutcomeDeclined {
		t.Errorf("outcome = %v", got)
	}
	if scanner.fillCalls != 0 {
		t.Error("credentials injected after decline")
	}
}

func TestConfirmedFlowFills(t *testing.T) {
	scanner := &fakeScanner{hasPassword: true}
	var promptedDomain, promptedUser string
	c := NewCoordinator(storeWith("example.com"), scanner, func(domain, username string) bool {
		promptedDomain, promptedUser = domain, username
		return true
	})

	got, err := c.OnPageLoaded(context.Background(), "https://example.com/login")
	if err != nil {
		t.Fatal(err)
	}
	if got != OutcomeFilled {
		t.Errorf("outcome = %v", got)
	}
	if promptedDomain != "example.com" || promptedUser != "alice" {
		t.Errorf("prompt saw %q/%q", promptedDomain, promptedUser)
	}
	if scanner.filledUsername != "alice" || scanner.filledPassword != "secret" {
		t.Errorf("filled %q/%q", scanner.filledUsername, scanner.filledPassword)
	}
}

// Every reachable path: Filled requires both the password-field observation
// and an affirmative answer.
func TestFilledRequiresPasswordFieldAndConfirmation(t *testing.T) {
	tests := []struct {
		name        string
		domain      string
		hasPassword bool
		confirm     bool
		want        Outcome
		wantFill    bool
	}{
		{"no match", "other.example", true, true, OutcomeNoMatch, false},
		{"no password field", "example.com", false, true, OutcomeNoPasswordField, false},
		{"declined", "example.com", true, false, OutcomeDeclined, false},
		{"filled", "example.com", true, true, OutcomeFilled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := &fakeScanner{hasPassword: tt.hasPassword}
			c := NewCoordinator(storeWith(tt.domain), scanner, func(string, string) bool { return tt.confirm })

			got, err := c.OnPageLoaded(context.Background(), "https://example.com/login")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("outcome = %v, want %v", got, tt.want)
			}
			if (scanner.fillCalls > 0) != tt.wantFill {
				t.Errorf("fillCalls = %d", scanner.fillCalls)
			}
		})
	}
}

func TestInvalidURLIsNoMatch(t *testing.T) {
	scanner := &fakeScanner{hasPassword: true}
	c := NewCoordinator(storeWith("example.com"), scanner, func(string, string) bool { return true })

	got, err := c.OnPageLoaded(context.Background(), "about:blank")
	if err != nil {
		t.Fatal(err)
	}
	if got != OutcomeNoMatch {
		t.Errorf("outcome = %v", got)
	}
}

func TestFillFailureSurfaced(t *testing.T) {
	scanner := &fakeScanner{hasPassword: true, fillErr: fmt.Errorf("page navigated away")}
	c := NewCoordinator(storeWith("example.com"), scanner, func(string, string) bool { return true })

	if _, err := c.OnPageLoaded(context.Background(), "https://example.com/login"); err == nil {
		t.Error("fill failure swallowed")
	}
}
