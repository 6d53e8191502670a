package vcs

import (
	"fmt"
	"sync"
)

// Kind names a backend implementation.
type Kind string

const (
	KindSvn      Kind = "svn"
	KindTortoise Kind = "tortoiseproc"
)

// Options carries everything a backend constructor needs. Zero batch
// sizes fall back to the backend's defaults; a nil Run falls back to
// the real process runner.
type Options struct {
	// SvnPath is the svn CLI executable. Used by the svn backend and
	// by TortoiseProc staging delegation.
	SvnPath string

	// TortoiseProcPath is the TortoiseProc executable.
	TortoiseProcPath string

	// CommitBatch overrides the backend's commit batch size.
	CommitBatch int

	// Run substitutes the process runner. Tests inject a recorder.
	Run RunFunc
}

// Constructor builds a backend from options. Implementations register
// themselves from init, mirroring how database drivers do it:
//
//	func init() { vcs.Register(vcs.KindSvn, New) }
type Constructor func(Options) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[Kind]Constructor)
)

// Register installs a constructor for kind. Registering the same kind
// twice, or a nil constructor, is a programming error and panics.
func Register(kind Kind, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if ctor == nil {
		panic(fmt.Sprintf("vcs: nil constructor for %q", kind))
	}
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("vcs: constructor for %q registered twice", kind))
	}
	registry[kind] = ctor
}

// New builds the backend registered under kind.
func New(kind Kind, opts Options) (Backend, error) {
	registryMu.RLock()
	ctor := registry[kind]
	registryMu.RUnlock()
	if ctor == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return ctor(opts)
}

// Registered reports whether a constructor exists for kind.
func Registered(kind Kind) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[kind]
	return ok
}
