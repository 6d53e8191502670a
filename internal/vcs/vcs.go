// Package vcs defines the capability boundary between the commit
// orchestrator and external Subversion tooling, plus the shared plumbing
// both concrete backends use: process execution with exit-code mapping,
// executable discovery, batching, and client version checks.
//
// # Architecture
//
// The orchestrator never shells out itself. It sees exactly one
// interface — update, stage add/remove, commit — and one result shape,
// Outcome. Backends register themselves by name so selection stays a
// configuration decision:
//
//	backend, err := vcs.New(vcs.KindSvn, vcs.Options{SvnPath: "svn"})
//	oc := backend.Commit(ctx, wcRoot, paths, message)
//	if !oc.OK() {
//	    // paths stay pending, next cycle retries
//	}
//
// # Implementations
//
//   - internal/vcs/svncli: the svn command-line client
//   - internal/vcs/tortoise: TortoiseProc, the GUI-driven client
package vcs

import (
	"context"
	"time"
)

// Exit codes reported for invocations that never produced a real exit
// status. They mirror shell conventions: 127 when the executable could
// not be found, 128 for any other spawn failure or a timeout kill.
const (
	ExitNotFound     = 127
	ExitSpawnFailure = 128
)

// Invocation timeouts. Commits get a generous window: the first commit
// of a busy day can push a lot of data.
const (
	DefaultTimeout = 10 * time.Minute
	CommitTimeout  = 60 * time.Minute
)

// Default batch sizes, chosen to stay safely under platform command-line
// length limits with typical path lengths.
const (
	DefaultStageBatch   = 50
	DefaultCommitBatch  = 80
	TortoiseCommitBatch = 100
)

// Outcome is the observed result of one external invocation. Exit code 0
// means the batch completed; anything else means its paths remain
// pending. Skipped marks operations a backend chose not to attempt
// (e.g. staging without an svn CLI configured) — not a failure.
type Outcome struct {
	Label    string // human label, e.g. "svn commit [/path/wc] (80 paths)"
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Skipped  bool
}

// OK reports whether the invocation ran and succeeded.
func (o Outcome) OK() bool { return !o.Skipped && o.ExitCode == 0 }

// Failed reports whether the invocation ran and did not succeed.
// A skipped operation neither succeeded nor failed.
func (o Outcome) Failed() bool { return !o.Skipped && o.ExitCode != 0 }

// Backend is the capability interface over an SVN tool.
//
// Paths passed to Add, Remove and Commit are absolute and already
// batched by the caller; one call is one invocation. Update receives
// every root at once so a backend may batch them into a single
// invocation when the tool supports it.
type Backend interface {
	// Name identifies the backend in logs and the journal.
	Name() string

	// Available reports whether the backing executable is resolved.
	Available() bool

	// CommitBatch is the backend's preferred commit batch size, used
	// when configuration does not pin one.
	CommitBatch() int

	// Update brings working copies up to date before a commit attempt.
	// Returns one Outcome per invocation issued.
	Update(ctx context.Context, roots []string) []Outcome

	// Add registers new files with version control.
	Add(ctx context.Context, root string, paths []string) Outcome

	// Remove registers deletions with version control.
	Remove(ctx context.Context, root string, paths []string) Outcome

	// Commit commits the given paths with the given message.
	Commit(ctx context.Context, root string, paths []string, message string) Outcome
}
