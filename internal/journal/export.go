package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ExportJSONL streams invocation rows matching f to w, one JSON object
// per line, and returns the number of rows written.
func (db *DB) ExportJSONL(ctx context.Context, w io.Writer, f Filter) (int, error) {
	records, err := db.Processes(ctx, f)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return i, fmt.Errorf("encode record %d: %w", rec.ID, err)
		}
	}
	return len(records), nil
}
