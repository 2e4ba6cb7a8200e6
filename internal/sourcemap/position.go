// Package sourcemap provides the byte-offset-to-line/column index that
// internal/diagnostic uses to report unsupported-node, unresolved-
// reference, and unknown-builtin diagnostics (spec §7) at a human
// readable location. The full source-map (V3 mapping + VLQ encoding)
// the teacher built alongside this is not part of the external
// interfaces this module exposes (spec §6 names a UTF-8 string, a
// kernel-name list, and a rename map — no source map), so only the
// line index survives here.
package sourcemap

import "sort"

// LineIndex provides efficient byte offset to line/column conversion.
// It pre-computes line start positions for O(log n) lookups.
type LineIndex struct {
	source     string
	lineStarts []int // byte offset of each line start
}

// NewLineIndex creates a LineIndex for the given source.
func NewLineIndex(source string) *LineIndex {
	idx := &LineIndex{
		source:     source,
		lineStarts: []int{0},
	}
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			if next := i + 1; next < len(source) {
				idx.lineStarts = append(idx.lineStarts, next)
			}
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				if next := i + 2; next < len(source) {
					idx.lineStarts = append(idx.lineStarts, next)
				}
				i++
			} else if next := i + 1; next < len(source) {
				idx.lineStarts = append(idx.lineStarts, next)
			}
		}
	}
	return idx
}

// LineCount returns the number of lines in the source.
func (idx *LineIndex) LineCount() int {
	return len(idx.lineStarts)
}

// ByteOffsetToLineColumn converts a byte offset to 0-indexed line and
// column. The column is in bytes, matching the diagnostic formatter's
// caret-indicator placement, which walks the raw source bytes.
func (idx *LineIndex) ByteOffsetToLineColumn(offset int) (line, col int) {
	if offset < 0 {
		return 0, 0
	}
	if offset >= len(idx.source) {
		if len(idx.source) == 0 {
			return 0, 0
		}
		offset = len(idx.source)
	}
	line = sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	col = offset - idx.lineStarts[line]
	return line, col
}
