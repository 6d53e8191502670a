// Package svncli implements the vcs.Backend interface over the svn
// command-line client. One call is one invocation; the orchestrator
// handles batching, ordering, and retry.
package svncli

import (
	"context"
	"fmt"

	"github.com/ariavision/svnwatch/internal/vcs"
)

func init() {
	vcs.Register(vcs.KindSvn, New)
}

// Client shells out to the svn executable.
type Client struct {
	path        string
	commitBatch int
	run         vcs.RunFunc
}

// New builds a Client from options. A missing executable path is not
// an error here; the backend just reports itself unavailable so the
// orchestrator can warn once and skip.
func New(opts vcs.Options) (vcs.Backend, error) {
	c := &Client{
		path:        opts.SvnPath,
		commitBatch: opts.CommitBatch,
		run:         opts.Run,
	}
	if c.path == "" {
		c.path = vcs.FindSvn()
	}
	if c.commitBatch <= 0 {
		c.commitBatch = vcs.DefaultCommitBatch
	}
	if c.run == nil {
		c.run = vcs.Run
	}
	return c, nil
}

// Name implements vcs.Backend.
func (c *Client) Name() string { return "svn" }

// Available implements vcs.Backend.
func (c *Client) Available() bool { return c.path != "" }

// CommitBatch implements vcs.Backend.
func (c *Client) CommitBatch() int { return c.commitBatch }

// Update implements vcs.Backend: one `svn update --depth infinity`
// per root, run from that root. A failing root does not stop the rest.
func (c *Client) Update(ctx context.Context, roots []string) []vcs.Outcome {
	outcomes := make([]vcs.Outcome, 0, len(roots))
	for _, root := range roots {
		outcomes = append(outcomes, c.run(ctx, vcs.Cmd{
			Name:    c.path,
			Args:    []string{"update", "--depth", "infinity", root},
			Dir:     root,
			Timeout: vcs.DefaultTimeout,
			Label:   fmt.Sprintf("svn update [%s]", root),
		}))
	}
	return outcomes
}

// Add implements vcs.Backend. --force makes re-adding an already
// versioned path a no-op instead of an error, which keeps retried
// batches idempotent.
func (c *Client) Add(ctx context.Context, root string, paths []string) vcs.Outcome {
	if len(paths) == 0 {
		return vcs.Outcome{Skipped: true, Label: "svn add (no paths)"}
	}
	return c.run(ctx, vcs.Cmd{
		Name:    c.path,
		Args:    append([]string{"add", "--force", "--parents"}, paths...),
		Dir:     root,
		Timeout: vcs.DefaultTimeout,
		Label:   fmt.Sprintf("svn add [%s] (%d paths)", root, len(paths)),
	})
}

// Remove implements vcs.Backend. --force registers the deletion even
// though the file is already gone from disk.
func (c *Client) Remove(ctx context.Context, root string, paths []string) vcs.Outcome {
	if len(paths) == 0 {
		return vcs.Outcome{Skipped: true, Label: "svn rm (no paths)"}
	}
	return c.run(ctx, vcs.Cmd{
		Name:    c.path,
		Args:    append([]string{"rm", "--force"}, paths...),
		Dir:     root,
		Timeout: vcs.DefaultTimeout,
		Label:   fmt.Sprintf("svn rm [%s] (%d paths)", root, len(paths)),
	})
}

// Commit implements vcs.Backend.
func (c *Client) Commit(ctx context.Context, root string, paths []string, message string) vcs.Outcome {
	if len(paths) == 0 {
		return vcs.Outcome{Skipped: true, Label: "svn commit (no paths)"}
	}
	return c.run(ctx, vcs.Cmd{
		Name:    c.path,
		Args:    append([]string{"commit", "-m", message}, paths...),
		Dir:     root,
		Timeout: vcs.CommitTimeout,
		Label:   fmt.Sprintf("svn commit [%s] (%d paths)", root, len(paths)),
	})
}
