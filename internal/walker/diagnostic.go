package walker

import (
	"encoding/json"
	"fmt"
)

// Operations recorded on a Diagnostic.
const (
	OpStat    = "stat"
	OpReadDir = "readdir"
	OpInfo    = "info"
)

// Diagnostic records a node that was skipped because it could not be read.
type Diagnostic struct {
	// Path is the node that failed.
	Path string
	// Op is the failed operation.
	Op string
	// Err is the underlying OS error.
	Err error
	// Root is set when the failing node is the root of the walk.
	Root bool
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s: %v", d.Op, d.Path, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// MarshalJSON renders the underlying error as a string.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	msg := ""
	if d.Err != nil {
		msg = d.Err.Error()
	}

	return json.Marshal(struct {
		Path  string `json:"path"`
		Op    string `json:"op"`
		Error string `json:"error"`
		Root  bool   `json:"root,omitempty"`
	}{d.Path, d.Op, msg, d.Root})
}

// RootUnreadable reports whether diags contain a failure of the walk root.
func RootUnreadable(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Root {
			return true
		}
	}

	return false
}
