package vcs

// Select resolves the backend to use: the svn CLI when preferred and
// available, otherwise TortoiseProc, otherwise ErrBackendNotFound.
// Both candidate backends must have been registered (the cmd package
// imports them for side effects).
func Select(opts Options, preferCLI bool) (Backend, error) {
	order := []Kind{KindSvn, KindTortoise}
	if !preferCLI {
		order = []Kind{KindTortoise, KindSvn}
	}

	for _, kind := range order {
		if !Registered(kind) {
			continue
		}
		backend, err := New(kind, opts)
		if err != nil {
			return nil, err
		}
		if backend.Available() {
			return backend, nil
		}
	}
	return nil, ErrBackendNotFound
}
