package vcs

// Chunk splits paths into batches of at most size entries, preserving
// order. Batching keeps each external invocation's argument list
// safely under platform command-line length limits. A size below 1 is
// treated as 1. An empty input yields no batches.
func Chunk(paths []string, size int) [][]string {
	if len(paths) == 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}
	batches := make([][]string, 0, (len(paths)+size-1)/size)
	for start := 0; start < len(paths); start += size {
		end := start + size
		if end > len(paths) {
			end = len(paths)
		}
		batches = append(batches, paths[start:end])
	}
	return batches
}
