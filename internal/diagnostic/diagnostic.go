// Package diagnostic carries the warning/fatal diagnostic stream
// produced while rewriting an OpenCL C AST (spec §7): a fatal
// unsupported-node error aborts the pass, while an unresolved-reference
// or unknown-built-in warning is recorded and the pass continues. The
// list/format machinery (byte-offset to line/column via
// internal/sourcemap, caret-indicator formatting) is carried over from
// the teacher's diagnostic.DiagnosticList; the rule-filter and the WGSL
// uniformity/entry-point/memory error-code families it also defined had
// no OpenCL equivalent and are dropped rather than adapted.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/starbytesoftware/oclminify/internal/sourcemap"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error is the "unsupported AST node" case of spec §7: fatal,
	// aborts the rewrite pass.
	Error Severity = iota
	// Warning covers an unresolved reference or unknown built-in: the
	// pass keeps going, falling back to the original name or "void".
	Warning
	// Note is additional context attached to another diagnostic, or an
	// informational message about a silently-normalized config
	// conflict (spec §7's last row).
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Position represents a position in source code.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Range represents a range in source code.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity
	Message  string
	Range    Range
}

// Error returns a formatted error string.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message)
}

// DiagnosticList collects diagnostics during a rewrite pass.
type DiagnosticList struct {
	diagnostics []Diagnostic
	lineIndex   *sourcemap.LineIndex
	source      string
	hasErrors   bool
}

// NewDiagnosticList creates a new diagnostic list for the given source.
func NewDiagnosticList(source string) *DiagnosticList {
	return &DiagnosticList{
		diagnostics: make([]Diagnostic, 0),
		lineIndex:   sourcemap.NewLineIndex(source),
		source:      source,
	}
}

// Add adds a diagnostic to the list.
func (dl *DiagnosticList) Add(d Diagnostic) {
	dl.diagnostics = append(dl.diagnostics, d)
	if d.Severity == Error {
		dl.hasErrors = true
	}
}

// AddError adds an error (fatal, unsupported-node) diagnostic.
func (dl *DiagnosticList) AddError(offset int, message string) {
	dl.Add(Diagnostic{Severity: Error, Message: message, Range: dl.MakeRange(offset, offset+1)})
}

// AddWarning adds a warning (unresolved-reference / unknown-builtin)
// diagnostic.
func (dl *DiagnosticList) AddWarning(offset int, message string) {
	dl.Add(Diagnostic{Severity: Warning, Message: message, Range: dl.MakeRange(offset, offset+1)})
}

// AddNote adds a note (informational, e.g. a silently-normalized config
// conflict) diagnostic.
func (dl *DiagnosticList) AddNote(offset int, message string) {
	dl.Add(Diagnostic{Severity: Note, Message: message, Range: dl.MakeRange(offset, offset+1)})
}

// MakePosition converts a byte offset to a Position.
func (dl *DiagnosticList) MakePosition(offset int) Position {
	line, col := dl.lineIndex.ByteOffsetToLineColumn(offset)
	return Position{Offset: offset, Line: line + 1, Column: col + 1}
}

// MakeRange converts byte offsets to a Range.
func (dl *DiagnosticList) MakeRange(start, end int) Range {
	return Range{Start: dl.MakePosition(start), End: dl.MakePosition(end)}
}

// HasErrors returns true if there are any error-level diagnostics.
func (dl *DiagnosticList) HasErrors() bool {
	return dl.hasErrors
}

// Diagnostics returns all collected diagnostics.
func (dl *DiagnosticList) Diagnostics() []Diagnostic {
	return dl.diagnostics
}

// Warnings returns only warning-level diagnostics.
func (dl *DiagnosticList) Warnings() []Diagnostic {
	var warnings []Diagnostic
	for _, d := range dl.diagnostics {
		if d.Severity == Warning {
			warnings = append(warnings, d)
		}
	}
	return warnings
}

// Count returns the total number of diagnostics.
func (dl *DiagnosticList) Count() int {
	return len(dl.diagnostics)
}

// Format formats all diagnostics as a human-readable string.
func (dl *DiagnosticList) Format() string {
	if len(dl.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range dl.diagnostics {
		sb.WriteString(dl.FormatDiagnostic(&d))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatDiagnostic formats a single diagnostic with source context.
func (dl *DiagnosticList) FormatDiagnostic(d *Diagnostic) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d:%d: %s: %s\n", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Message))
	sourceLine := dl.getSourceLine(d.Range.Start.Line)
	if sourceLine != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", sourceLine))
		caret := strings.Repeat(" ", d.Range.Start.Column-1+4) + "^"
		sb.WriteString(caret)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (dl *DiagnosticList) getSourceLine(line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(dl.source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// Clear removes all diagnostics, allowing a DiagnosticList to be reused
// across passes.
func (dl *DiagnosticList) Clear() {
	dl.diagnostics = dl.diagnostics[:0]
	dl.hasErrors = false
}
