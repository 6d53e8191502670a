package svncli

import (
	"context"
	"reflect"
	"testing"

	"github.com/ariavision/svnwatch/internal/vcs"
)

// recorder captures issued commands and plays back canned outcomes.
type recorder struct {
	cmds []vcs.Cmd
	exit int
}

func (r *recorder) run(ctx context.Context, c vcs.Cmd) vcs.Outcome {
	r.cmds = append(r.cmds, c)
	return vcs.Outcome{Label: c.Label, ExitCode: r.exit}
}

func newClient(t *testing.T, rec *recorder) vcs.Backend {
	t.Helper()
	b, err := New(vcs.Options{SvnPath: "/usr/bin/svn", Run: rec.run})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestCommitArgs(t *testing.T) {
	rec := &recorder{}
	c := newClient(t, rec)

	oc := c.Commit(context.Background(), "/wc", []string{"/wc/a", "/wc/b"}, "msg here")
	if !oc.OK() {
		t.Fatalf("outcome = %+v", oc)
	}

	cmd := rec.cmds[0]
	want := []string{"commit", "-m", "msg here", "/wc/a", "/wc/b"}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("args = %v, want %v", cmd.Args, want)
	}
	if cmd.Dir != "/wc" {
		t.Errorf("dir = %q, want the working copy root", cmd.Dir)
	}
	if cmd.Timeout != vcs.CommitTimeout {
		t.Errorf("timeout = %v, want the commit timeout", cmd.Timeout)
	}
}

func TestAddForcesAndCreatesParents(t *testing.T) {
	rec := &recorder{}
	c := newClient(t, rec)

	c.Add(context.Background(), "/wc", []string{"/wc/new.txt"})
	want := []string{"add", "--force", "--parents", "/wc/new.txt"}
	if !reflect.DeepEqual(rec.cmds[0].Args, want) {
		t.Errorf("args = %v, want %v", rec.cmds[0].Args, want)
	}
}

func TestRemoveForces(t *testing.T) {
	rec := &recorder{}
	c := newClient(t, rec)

	c.Remove(context.Background(), "/wc", []string{"/wc/gone.txt"})
	want := []string{"rm", "--force", "/wc/gone.txt"}
	if !reflect.DeepEqual(rec.cmds[0].Args, want) {
		t.Errorf("args = %v, want %v", rec.cmds[0].Args, want)
	}
}

func TestUpdateOneInvocationPerRoot(t *testing.T) {
	rec := &recorder{}
	c := newClient(t, rec)

	outcomes := c.Update(context.Background(), []string{"/wc1", "/wc2"})
	if len(outcomes) != 2 || len(rec.cmds) != 2 {
		t.Fatalf("got %d outcomes, %d invocations; want 2 each", len(outcomes), len(rec.cmds))
	}
	want := []string{"update", "--depth", "infinity", "/wc1"}
	if !reflect.DeepEqual(rec.cmds[0].Args, want) {
		t.Errorf("args = %v, want %v", rec.cmds[0].Args, want)
	}
	if rec.cmds[1].Dir != "/wc2" {
		t.Errorf("second update dir = %q, want /wc2", rec.cmds[1].Dir)
	}
}

func TestEmptyBatchesSkip(t *testing.T) {
	rec := &recorder{}
	c := newClient(t, rec)
	ctx := context.Background()

	for _, oc := range []vcs.Outcome{
		c.Add(ctx, "/wc", nil),
		c.Remove(ctx, "/wc", nil),
		c.Commit(ctx, "/wc", nil, "m"),
	} {
		if !oc.Skipped {
			t.Errorf("empty batch must be skipped, got %+v", oc)
		}
	}
	if len(rec.cmds) != 0 {
		t.Errorf("%d invocations issued for empty batches", len(rec.cmds))
	}
}

func TestAvailability(t *testing.T) {
	b, err := New(vcs.Options{SvnPath: "/usr/bin/svn"})
	if err != nil {
		t.Fatal(err)
	}
	if !b.Available() {
		t.Error("configured path must be available")
	}
	if b.CommitBatch() != vcs.DefaultCommitBatch {
		t.Errorf("commit batch = %d, want default", b.CommitBatch())
	}

	b, err = New(vcs.Options{SvnPath: "/usr/bin/svn", CommitBatch: 25})
	if err != nil {
		t.Fatal(err)
	}
	if b.CommitBatch() != 25 {
		t.Errorf("commit batch = %d, want the configured 25", b.CommitBatch())
	}
}
