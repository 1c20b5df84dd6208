package tabular

import (
	"fmt"
	"strings"
)

// DecodeError indicates a malformed tabular block: a missing headers or
// rowSet field, a non-string header, or a row whose length does not match
// the header count. These are API contract violations and are never
// retryable.
type DecodeError struct {
	Block  string // block name or "#<index>" when selected by position
	Row    int    // row index, -1 when the block structure itself is broken
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("tabular decode error in block %q row %d: %s", e.Block, e.Row, e.Reason)
	}
	return fmt.Sprintf("tabular decode error in block %q: %s", e.Block, e.Reason)
}

// BlockNotFoundError indicates that a requested block, selected by name
// or by position, is absent from the payload. Available lists the block
// names that were actually present so the mismatch can be diagnosed
// without re-running the request.
type BlockNotFoundError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("no result set named %q, available: [%s]",
		e.Name, strings.Join(e.Available, ", "))
}
