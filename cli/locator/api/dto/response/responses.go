package response

import (
	"github.com/daniil11ru/lastseen/cli/locator/domain"
)

// Error is the wire shape of every failure; Code is the stable string
// callers branch on.
type Error struct {
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Batch carries the found records plus the partial-failure summary.
type Batch struct {
	Data    []interface{}       `json:"data"`
	Summary domain.BatchSummary `json:"summary"`
}

// List carries one projected page plus the full-scan summary.
type List struct {
	Data    []interface{}      `json:"data"`
	Summary domain.ListSummary `json:"summary"`
}

// Exists reports presence of an identifier; non-existence is a success.
type Exists struct {
	ID     string `json:"id"`
	Exists bool   `json:"exists"`
}

// Status aggregates per-namespace health and accounting.
type Status struct {
	Healthy    bool                              `json:"healthy"`
	Namespaces map[string]domain.NamespaceStatus `json:"namespaces"`
}
