package sourcemap

import (
	"fmt"
	"strings"
	"testing"
)

func TestLineIndexEmpty(t *testing.T) {
	idx := NewLineIndex("")
	if idx.LineCount() != 1 {
		t.Errorf("Empty source LineCount() = %d, want 1", idx.LineCount())
	}
	line, col := idx.ByteOffsetToLineColumn(0)
	if line != 0 || col != 0 {
		t.Errorf("Empty source offset 0: got (%d, %d), want (0, 0)", line, col)
	}
}

func TestLineIndexSingleLine(t *testing.T) {
	source := "__kernel void f(int x) { return; }"
	idx := NewLineIndex(source)
	if idx.LineCount() != 1 {
		t.Errorf("Single line LineCount() = %d, want 1", idx.LineCount())
	}
	tests := []struct{ offset, line, col int }{
		{0, 0, 0},
		{9, 0, 9},
		{34, 0, 34},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset_%d", tt.offset), func(t *testing.T) {
			line, col := idx.ByteOffsetToLineColumn(tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("offset %d: got (%d, %d), want (%d, %d)", tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestLineIndexMultiLine(t *testing.T) {
	source := "int a = 1;\nint b = 2;\nint c = 3;"
	idx := NewLineIndex(source)
	if idx.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", idx.LineCount())
	}
	tests := []struct{ offset, line, col int }{
		{0, 0, 0},
		{4, 0, 4},
		{11, 1, 0},
		{22, 2, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset_%d", tt.offset), func(t *testing.T) {
			line, col := idx.ByteOffsetToLineColumn(tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("offset %d: got (%d, %d), want (%d, %d)", tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestLineIndexNewlineStyles(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		lineCount int
	}{
		{"unix_lf", "a\nb\nc", 3},
		{"windows_crlf", "a\r\nb\r\nc", 3},
		{"old_mac_cr", "a\rb\rc", 3},
		{"trailing_lf", "a\nb\n", 2},
		{"trailing_crlf", "a\r\nb\r\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewLineIndex(tt.source)
			if idx.LineCount() != tt.lineCount {
				t.Errorf("LineCount() = %d, want %d", idx.LineCount(), tt.lineCount)
			}
		})
	}
}

func TestLineIndexCRLFPositions(t *testing.T) {
	source := "ab\r\ncd\r\nef"
	idx := NewLineIndex(source)
	tests := []struct{ offset, line, col int }{
		{0, 0, 0},
		{1, 0, 1},
		{2, 0, 2},
		{4, 1, 0},
		{5, 1, 1},
		{8, 2, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset_%d", tt.offset), func(t *testing.T) {
			line, col := idx.ByteOffsetToLineColumn(tt.offset)
			if line != tt.line || col != tt.col {
				t.Errorf("offset %d: got (%d, %d), want (%d, %d)", tt.offset, line, col, tt.line, tt.col)
			}
		})
	}
}

func TestByteOffsetToLineColumnOutOfBounds(t *testing.T) {
	source := "abc"
	idx := NewLineIndex(source)
	line, col := idx.ByteOffsetToLineColumn(100)
	if line != 0 || col != 3 {
		t.Errorf("Out of bounds offset: got (%d, %d), want (0, 3)", line, col)
	}
	line, col = idx.ByteOffsetToLineColumn(-1)
	if line != 0 || col != 0 {
		t.Errorf("Negative offset: got (%d, %d), want (0, 0)", line, col)
	}
}

func TestVeryLongLine(t *testing.T) {
	var builder strings.Builder
	builder.WriteString("int x = ")
	for i := 0; i < 10000; i++ {
		builder.WriteString("1")
	}
	builder.WriteString(";")
	source := builder.String()
	idx := NewLineIndex(source)
	if idx.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", idx.LineCount())
	}
	offset := len(source) - 1
	line, col := idx.ByteOffsetToLineColumn(offset)
	if line != 0 {
		t.Errorf("Line = %d, want 0", line)
	}
	if col != offset {
		t.Errorf("Col = %d, want %d", col, offset)
	}
}

func TestManyLines(t *testing.T) {
	var builder strings.Builder
	lineCount := 10000
	for i := 0; i < lineCount; i++ {
		builder.WriteString(fmt.Sprintf("int x%d = %d;\n", i, i))
	}
	source := builder.String()
	idx := NewLineIndex(source)
	if idx.LineCount() != lineCount {
		t.Errorf("LineCount() = %d, want %d", idx.LineCount(), lineCount)
	}
	line, col := idx.ByteOffsetToLineColumn(0)
	if line != 0 || col != 0 {
		t.Errorf("First char: got (%d, %d), want (0, 0)", line, col)
	}
	midOffset := len(source) / 2
	line, _ = idx.ByteOffsetToLineColumn(midOffset)
	if line < lineCount/4 || line > lineCount*3/4 {
		t.Errorf("Middle offset %d mapped to line %d, expected between %d and %d", midOffset, line, lineCount/4, lineCount*3/4)
	}
	lastLineStart := len(source) - len("int x9999 = 9999;\n")
	line, _ = idx.ByteOffsetToLineColumn(lastLineStart)
	if line != lineCount-1 {
		t.Errorf("Last line = %d, want %d", line, lineCount-1)
	}
}

func BenchmarkNewLineIndex(b *testing.B) {
	var builder strings.Builder
	for i := 0; i < 1000; i++ {
		builder.WriteString(fmt.Sprintf("int x%d = %d;\n", i, i))
	}
	source := builder.String()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewLineIndex(source)
	}
}

func BenchmarkByteOffsetToLineColumn(b *testing.B) {
	var builder strings.Builder
	for i := 0; i < 1000; i++ {
		builder.WriteString(fmt.Sprintf("int x%d = %d;\n", i, i))
	}
	source := builder.String()
	idx := NewLineIndex(source)
	offset := len(source) / 2
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.ByteOffsetToLineColumn(offset)
	}
}
