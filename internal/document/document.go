// Package document defines the persisted form of an editor document and
// its JSON codec.
//
// A persisted document is
//
//	{"time": <epoch millis>, "blocks": [{"type": "...", "data": {...}}, ...], "version": "..."}
//
// where the order of blocks is the reading order.
package document

import "time"

// Version is written into every saved document.
const Version = "2.31.0"

// Block is the serialized form of one content block.
type Block struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// NewBlock creates a block, never leaving Data nil.
func NewBlock(typ string, data map[string]any) Block {
	if data == nil {
		data = map[string]any{}
	}
	return Block{Type: typ, Data: data}
}

// Output is a saved document.
type Output struct {
	Time    int64   `json:"time"`
	Blocks  []Block `json:"blocks"`
	Version string  `json:"version"`
}

// IsEmpty reports whether the document carries no blocks.
func (o Output) IsEmpty() bool {
	return len(o.Blocks) == 0
}

// ValidatedBlock is produced for each live block during a save. It is never
// persisted.
type ValidatedBlock struct {
	// Tool is the name of the tool that produced Data.
	Tool string

	// Data is what the tool saved.
	Data map[string]any

	// Time is how long the tool took to save.
	Time time.Duration

	// IsValid is false when saving failed or the tool rejected its data.
	IsValid bool
}

// Now returns the current time in epoch milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}
