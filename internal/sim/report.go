package sim

import (
	"encoding/json"
	"io"
)

// WriteReport serializes stats as a JSON object keyed by the trace stem,
// matching the reference's top-level report shape.
func WriteReport(w io.Writer, stats *Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]*Stats{stats.Trace: stats})
}
