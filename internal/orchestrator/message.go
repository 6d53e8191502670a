package orchestrator

import (
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/ariavision/svnwatch/internal/version"
)

// DefaultPrefix is the commit message prefix when configuration does
// not set one.
const DefaultPrefix = "Auto-commit (Today)"

// ComposeMessage builds the commit message every batch of a cycle
// carries:
//
//	{prefix}: {YYYY-MM-DD HH:MM:SS} by {user} ({app} {version})
func ComposeMessage(prefix string, now time.Time, username string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if username == "" {
		username = CurrentUser()
	}
	return fmt.Sprintf("%s: %s by %s (%s)",
		prefix,
		now.Format("2006-01-02 15:04:05"),
		username,
		version.Full(),
	)
}

// CurrentUser resolves the OS user for the commit message, falling
// back through environment variables to "unknown".
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}
