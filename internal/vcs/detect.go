package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// Well-known install directories probed after PATH. The Windows lists
// cover the usual installer defaults; elsewhere the package-manager
// prefixes are enough.
func svnSearchDirs() []string {
	if runtime.GOOS == "windows" {
		pf := os.Getenv("ProgramFiles")
		if pf == "" {
			pf = `C:\Program Files`
		}
		pf86 := os.Getenv("ProgramFiles(x86)")
		if pf86 == "" {
			pf86 = `C:\Program Files (x86)`
		}
		return []string{
			filepath.Join(pf, "TortoiseSVN", "bin"),
			filepath.Join(pf, "Subversion", "bin"),
			filepath.Join(pf, "SlikSvn", "bin"),
			filepath.Join(pf, "CollabNet", "Subversion Client"),
			filepath.Join(pf86, "Subversion", "bin"),
		}
	}
	return []string{"/usr/bin", "/usr/local/bin", "/opt/homebrew/bin"}
}

func tortoiseSearchDirs() []string {
	if runtime.GOOS != "windows" {
		return nil
	}
	pf := os.Getenv("ProgramFiles")
	if pf == "" {
		pf = `C:\Program Files`
	}
	return []string{filepath.Join(pf, "TortoiseSVN", "bin")}
}

func exeName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func lookIn(dirs []string, base string) string {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, exeName(base))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// FindSvn resolves the svn command-line client: PATH first, then the
// well-known install directories. Empty string when nothing resolves.
func FindSvn() string {
	if path, err := exec.LookPath(exeName("svn")); err == nil {
		return path
	}
	return lookIn(svnSearchDirs(), "svn")
}

// FindTortoiseProc resolves TortoiseProc. TortoiseSVN is Windows-only,
// so this is always empty elsewhere.
func FindTortoiseProc() string {
	if runtime.GOOS != "windows" {
		return ""
	}
	if path, err := exec.LookPath("TortoiseProc.exe"); err == nil {
		return path
	}
	return lookIn(tortoiseSearchDirs(), "TortoiseProc")
}

// ClientVersion probes `svn --version --quiet` and returns the bare
// version string, e.g. "1.14.2".
func ClientVersion(ctx context.Context, run RunFunc, svnPath string) (string, error) {
	oc := run(ctx, Cmd{
		Name:    svnPath,
		Args:    []string{"--version", "--quiet"},
		Timeout: DefaultTimeout,
		Label:   "svn --version",
	})
	if oc.Failed() || oc.Skipped {
		return "", fmt.Errorf("%w: exit %d", ErrVersionUnknown, oc.ExitCode)
	}
	v := strings.TrimSpace(oc.Stdout)
	if v == "" || !semver.IsValid(canonical(v)) {
		return "", fmt.Errorf("%w: %q", ErrVersionUnknown, v)
	}
	return v, nil
}

// PreDates17 reports whether the client is older than Subversion 1.7.
// Pre-1.7 working copies keep a .svn directory in every subdirectory,
// which makes every subdirectory look like an independent root and
// breaks discovery; callers warn on it.
func PreDates17(version string) bool {
	v := canonical(version)
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, "v1.7.0") < 0
}

func canonical(version string) string {
	return "v" + strings.TrimPrefix(strings.TrimSpace(version), "v")
}
