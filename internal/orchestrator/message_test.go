package orchestrator

import (
	"fmt"
	"testing"
	"time"

	"github.com/ariavision/svnwatch/internal/version"
)

func TestComposeMessage(t *testing.T) {
	at := time.Date(2024, 6, 10, 14, 30, 5, 0, time.Local)

	got := ComposeMessage("Nightly", at, "alice")
	want := fmt.Sprintf("Nightly: 2024-06-10 14:30:05 by alice (%s)", version.Full())
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestComposeMessageDefaults(t *testing.T) {
	at := time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local)

	got := ComposeMessage("", at, "bob")
	want := fmt.Sprintf("%s: 2024-06-10 00:00:00 by bob (%s)", DefaultPrefix, version.Full())
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	// Empty username resolves to someone, never an empty slot.
	if CurrentUser() == "" {
		t.Error("CurrentUser must not be empty")
	}
}
