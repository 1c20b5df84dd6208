// Package tabular converts the NBA Stats API headers+rowSet wire format
// into header-keyed records.
//
// Most stats endpoints return data in a tabular encoding rather than
// structured JSON:
//
//	{
//	    "resultSets": [
//	        {
//	            "name": "Standings",
//	            "headers": ["TeamID", "TeamName", "WINS"],
//	            "rowSet": [
//	                [1610612760, "Thunder", 36],
//	                [1610612765, "Pistons", 31]
//	            ]
//	        }
//	    ]
//	}
//
// Three container variants occur in the wild and are all handled here:
// a list of named blocks under "resultSets", a dict keyed by block name
// under "resultSets", and the legacy singular "resultSet" key. Callers
// select a block by position or by name and receive one Record per row.
//
// Normalization is idempotent: payloads that are not in the tabular
// format pass through unchanged, so feeding already-normalized data back
// in is a no-op.
package tabular

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Container keys used by the stats API.
const (
	keyResultSets = "resultSets"
	keyResultSet  = "resultSet" // legacy singular variant
	keyHeaders    = "headers"
	keyRowSet     = "rowSet"
)

// Record is one tabular row keyed by header name. Values carry the types
// produced by encoding/json (string, float64, bool, nil).
type Record map[string]any

// Selection names one block to extract in a Normalize mapping. When
// Single is set the target receives the first row (or nil for an empty
// block) instead of the full row list.
type Selection struct {
	Block  string
	Single bool
}

// IsTabular reports whether data is a payload in the tabular result-set
// format. Used to decide between normalization and passthrough.
func IsTabular(data any) bool {
	m, ok := data.(map[string]any)
	if !ok {
		log.Debug().
			Str("actual_type", fmt.Sprintf("%T", data)).
			Msg("Tabular passthrough: payload is not an object")
		return false
	}
	if _, ok := m[keyResultSets]; ok {
		return true
	}
	if _, ok := m[keyResultSet]; ok {
		return true
	}
	log.Debug().
		Int("keys", len(m)).
		Msg("Tabular passthrough: no result set container key")
	return false
}

// block is one parsed result set prior to row extraction.
type block struct {
	name    string
	raw     map[string]any
	byIndex string // fallback label when the block carries no name
}

func (b block) label() string {
	if b.name != "" {
		return b.name
	}
	return b.byIndex
}

// container extracts the list of blocks from any of the three wire
// variants. Returns a DecodeError when the container key is present but
// its shape is unusable.
func container(data any) ([]block, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, &DecodeError{Block: "", Row: -1, Reason: "payload is not an object"}
	}

	raw, ok := m[keyResultSets]
	if !ok {
		// Legacy singular variant: the value is either a list of blocks
		// or one bare block.
		raw, ok = m[keyResultSet]
		if !ok {
			return nil, &DecodeError{Block: "", Row: -1, Reason: "no result set container key"}
		}
	}

	switch v := raw.(type) {
	case []any:
		blocks := make([]block, 0, len(v))
		for i, item := range v {
			bm, ok := item.(map[string]any)
			if !ok {
				return nil, &DecodeError{
					Block:  fmt.Sprintf("#%d", i),
					Row:    -1,
					Reason: "result set entry is not an object",
				}
			}
			name, _ := bm["name"].(string)
			blocks = append(blocks, block{name: name, raw: bm, byIndex: fmt.Sprintf("#%d", i)})
		}
		return blocks, nil

	case map[string]any:
		// Either a dict keyed by block name, or one bare block
		// (the single-block legacy shape carries headers directly).
		if _, bare := v[keyHeaders]; bare {
			name, _ := v["name"].(string)
			return []block{{name: name, raw: v, byIndex: "#0"}}, nil
		}
		blocks := make([]block, 0, len(v))
		for name, item := range v {
			bm, ok := item.(map[string]any)
			if !ok {
				return nil, &DecodeError{
					Block:  name,
					Row:    -1,
					Reason: "result set entry is not an object",
				}
			}
			blocks = append(blocks, block{name: name, raw: bm, byIndex: name})
		}
		return blocks, nil

	default:
		return nil, &DecodeError{Block: "", Row: -1, Reason: "result set container is neither list nor object"}
	}
}

// records zips headers with every row of a block. Row width must match
// the header count exactly; short or long rows are decode errors, never
// silently truncated or padded.
func records(b block) ([]Record, error) {
	rawHeaders, ok := b.raw[keyHeaders].([]any)
	if !ok {
		return nil, &DecodeError{Block: b.label(), Row: -1, Reason: "missing or malformed headers"}
	}

	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		s, ok := h.(string)
		if !ok {
			return nil, &DecodeError{
				Block:  b.label(),
				Row:    -1,
				Reason: fmt.Sprintf("header %d is not a string", i),
			}
		}
		headers[i] = s
	}

	rawRows, ok := b.raw[keyRowSet].([]any)
	if !ok {
		return nil, &DecodeError{Block: b.label(), Row: -1, Reason: "missing or malformed rowSet"}
	}

	out := make([]Record, 0, len(rawRows))
	for i, rawRow := range rawRows {
		row, ok := rawRow.([]any)
		if !ok {
			return nil, &DecodeError{Block: b.label(), Row: i, Reason: "row is not an array"}
		}
		if len(row) != len(headers) {
			return nil, &DecodeError{
				Block:  b.label(),
				Row:    i,
				Reason: fmt.Sprintf("row has %d values for %d headers", len(row), len(headers)),
			}
		}
		rec := make(Record, len(headers))
		for j, h := range headers {
			rec[h] = row[j]
		}
		out = append(out, rec)
	}
	return out, nil
}

// Rows parses the block at the given position (0 is the common case: the
// first and often only result set) into one Record per row.
func Rows(data any, index int) ([]Record, error) {
	blocks, err := container(data)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(blocks) {
		// A positional miss enumerates the present blocks just like a
		// by-name miss, so the caller can see what was actually there.
		available := make([]string, len(blocks))
		for i, b := range blocks {
			available[i] = b.label()
		}
		return nil, &BlockNotFoundError{Name: fmt.Sprintf("#%d", index), Available: available}
	}
	return records(blocks[index])
}

// RowsByName parses the block whose "name" field (or dict key) matches
// name. A missing block yields a BlockNotFoundError listing the names
// that were present.
func RowsByName(data any, name string) ([]Record, error) {
	blocks, err := container(data)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if b.name == name {
			return records(b)
		}
	}
	available := make([]string, len(blocks))
	for i, b := range blocks {
		available[i] = b.label()
	}
	log.Debug().
		Str("name", name).
		Strs("available", available).
		Msg("Result set not found")
	return nil, &BlockNotFoundError{Name: name, Available: available}
}

// FirstRowByName returns the first record of the named block, or nil when
// the block exists but holds zero rows. Empty blocks are legitimate for
// many queries, so emptiness is not an error; an absent block still fails
// with BlockNotFoundError.
func FirstRowByName(data any, name string) (Record, error) {
	rows, err := RowsByName(data, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Normalize extracts every mapped block in one pass, producing a map from
// target field to row list (or single Record when Selection.Single is
// set). Payloads that are not tabular pass through unchanged, which makes
// Normalize idempotent. When ignoreMissing is true, absent blocks yield
// an empty list (or nil for single mode) instead of failing, for
// endpoints whose optional sections are conditionally present.
func Normalize(data any, mappings map[string]Selection, ignoreMissing bool) (any, error) {
	if !IsTabular(data) {
		return data, nil
	}

	out := make(map[string]any, len(mappings))
	for field, sel := range mappings {
		rows, err := RowsByName(data, sel.Block)
		if err != nil {
			var notFound *BlockNotFoundError
			if ignoreMissing && errors.As(err, &notFound) {
				rows = nil
			} else {
				return nil, err
			}
		}
		if sel.Single {
			if len(rows) == 0 {
				out[field] = nil
			} else {
				out[field] = rows[0]
			}
		} else {
			if rows == nil {
				rows = []Record{}
			}
			out[field] = rows
		}
	}
	return out, nil
}
