// Package tortoise implements the vcs.Backend interface over
// TortoiseProc, the GUI-driven TortoiseSVN client.
//
// TortoiseProc takes its path list as one argument, "*"-joined, so a
// whole batch is a single /path: argument regardless of batch size.
// Staging is delegated to the svn CLI when one is configured; without
// it, staging is skipped rather than failed — TortoiseProc's commit
// dialog picks up unversioned and missing items on its own.
package tortoise

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariavision/svnwatch/internal/vcs"
	"github.com/ariavision/svnwatch/internal/vcs/svncli"
)

// PathSep joins multiple paths into one /path: argument.
const PathSep = "*"

func init() {
	vcs.Register(vcs.KindTortoise, New)
}

// Client shells out to TortoiseProc, with an optional svn CLI sidecar
// for staging.
type Client struct {
	path        string
	commitBatch int
	run         vcs.RunFunc
	stager      vcs.Backend // nil when no svn CLI resolves
}

// New builds a Client from options.
func New(opts vcs.Options) (vcs.Backend, error) {
	c := &Client{
		path:        opts.TortoiseProcPath,
		commitBatch: opts.CommitBatch,
		run:         opts.Run,
	}
	if c.path == "" {
		c.path = vcs.FindTortoiseProc()
	}
	if c.commitBatch <= 0 {
		c.commitBatch = vcs.TortoiseCommitBatch
	}
	if c.run == nil {
		c.run = vcs.Run
	}

	svnPath := opts.SvnPath
	if svnPath == "" {
		svnPath = vcs.FindSvn()
	}
	if svnPath != "" {
		stager, err := svncli.New(vcs.Options{SvnPath: svnPath, Run: opts.Run})
		if err != nil {
			return nil, err
		}
		c.stager = stager
	}
	return c, nil
}

// Name implements vcs.Backend.
func (c *Client) Name() string { return "tortoiseproc" }

// Available implements vcs.Backend.
func (c *Client) Available() bool { return c.path != "" }

// CommitBatch implements vcs.Backend.
func (c *Client) CommitBatch() int { return c.commitBatch }

// Update implements vcs.Backend: one /command:update invocation with
// every root in the joined path list.
func (c *Client) Update(ctx context.Context, roots []string) []vcs.Outcome {
	if len(roots) == 0 {
		return nil
	}
	return []vcs.Outcome{c.run(ctx, vcs.Cmd{
		Name: c.path,
		Args: []string{
			"/command:update",
			"/path:" + strings.Join(roots, PathSep),
			"/closeonend:1",
		},
		Timeout: vcs.DefaultTimeout,
		Label:   fmt.Sprintf("tortoiseproc update (%d roots)", len(roots)),
	})}
}

// Add implements vcs.Backend, delegating to the svn CLI when present.
func (c *Client) Add(ctx context.Context, root string, paths []string) vcs.Outcome {
	if c.stager == nil {
		return vcs.Outcome{Skipped: true, Label: "tortoiseproc add (no svn cli)"}
	}
	return c.stager.Add(ctx, root, paths)
}

// Remove implements vcs.Backend, delegating to the svn CLI when present.
func (c *Client) Remove(ctx context.Context, root string, paths []string) vcs.Outcome {
	if c.stager == nil {
		return vcs.Outcome{Skipped: true, Label: "tortoiseproc rm (no svn cli)"}
	}
	return c.stager.Remove(ctx, root, paths)
}

// Commit implements vcs.Backend. The commit dialog is told to close
// itself on success so unattended cycles do not stack windows.
func (c *Client) Commit(ctx context.Context, root string, paths []string, message string) vcs.Outcome {
	if len(paths) == 0 {
		return vcs.Outcome{Skipped: true, Label: "tortoiseproc commit (no paths)"}
	}
	return c.run(ctx, vcs.Cmd{
		Name: c.path,
		Args: []string{
			"/command:commit",
			"/path:" + strings.Join(paths, PathSep),
			"/logmsg:" + message,
			"/notempfile",
			"/closeonend:1",
		},
		Dir:     root,
		Timeout: vcs.CommitTimeout,
		Label:   fmt.Sprintf("tortoiseproc commit [%s] (%d paths)", root, len(paths)),
	})
}
