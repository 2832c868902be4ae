package types

// DefaultScope is the pseudo store scope that always receives the SKU and
// the merged complex data. The bulk importer treats rows in this scope as
// the fallback for any store that has no scoped value.
const DefaultScope = "default"

// FlatRecord is one row of attribute-code to value pairs for a single
// (sku, store scope) combination. Values are either string or []string;
// "sku" and "_store" may be nil.
type FlatRecord map[string]any

// Scope returns the record's "_store" value, or DefaultScope when nil.
func (r FlatRecord) Scope() string {
	if v, ok := r["_store"]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return DefaultScope
}

// SKU returns the record's "sku" value if it is a non-empty string.
func (r FlatRecord) SKU() (string, bool) {
	if v, ok := r["sku"]; ok && v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// ImportResult is what the bulk import collaborator reports back for one
// batch of flat records.
type ImportResult struct {
	Processed int      `json:"processed"`
	Invalid   int      `json:"invalid"`
	NewSKUs   []string `json:"newSkus,omitempty"`
}

// RunResult classifies the outcome of a whole import run.
type RunResult int

const (
	RunNoValidFiles RunResult = iota
	RunOK
	RunPartiallyOK
	RunNoFiles
	RunLocked
)

// String returns a stable identifier for the run result.
func (r RunResult) String() string {
	switch r {
	case RunNoValidFiles:
		return "no-valid-files"
	case RunOK:
		return "ok"
	case RunPartiallyOK:
		return "partially-ok"
	case RunNoFiles:
		return "no-files-found"
	case RunLocked:
		return "lock-not-obtained"
	default:
		return "unknown"
	}
}

// RunStatus represents the status of a recorded import run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunSource represents how an import run was triggered.
type RunSource string

const (
	SourceCLI    RunSource = "cli"
	SourceServer RunSource = "server"
)
