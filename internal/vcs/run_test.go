package vcs

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestRunMapsExitCodes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  Cmd
		want int
	}{
		{
			name: "success",
			cmd:  Cmd{Name: "sh", Args: []string{"-c", "exit 0"}},
			want: 0,
		},
		{
			name: "tool exit code passes through",
			cmd:  Cmd{Name: "sh", Args: []string{"-c", "exit 3"}},
			want: 3,
		},
		{
			name: "executable not found",
			cmd:  Cmd{Name: "definitely-not-an-executable-4721"},
			want: ExitNotFound,
		},
		{
			name: "timeout kill",
			cmd:  Cmd{Name: "sh", Args: []string{"-c", "sleep 10"}, Timeout: 50 * time.Millisecond},
			want: ExitSpawnFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oc := Run(ctx, tt.cmd)
			if oc.ExitCode != tt.want {
				t.Errorf("exit code = %d, want %d (stderr %q)", oc.ExitCode, tt.want, oc.Stderr)
			}
			if oc.Skipped {
				t.Error("real invocations are never skipped")
			}
		})
	}
}

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	oc := Run(context.Background(), Cmd{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	if !oc.OK() {
		t.Fatalf("exit code = %d, want 0", oc.ExitCode)
	}
	if oc.Stdout != "out\n" {
		t.Errorf("stdout = %q", oc.Stdout)
	}
	if oc.Stderr != "err\n" {
		t.Errorf("stderr = %q", oc.Stderr)
	}
	if oc.Duration <= 0 {
		t.Error("duration not measured")
	}
}

func TestOutcomePredicates(t *testing.T) {
	if !(Outcome{ExitCode: 0}).OK() {
		t.Error("exit 0 must be OK")
	}
	if !(Outcome{ExitCode: 1}).Failed() {
		t.Error("exit 1 must be Failed")
	}
	skipped := Outcome{Skipped: true, ExitCode: 0}
	if skipped.OK() || skipped.Failed() {
		t.Error("a skipped outcome is neither OK nor Failed")
	}
}
