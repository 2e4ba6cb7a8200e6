// Package api provides the public API for the OpenCL C minifier.
//
// This package is intended for programmatic use of the minifier. For
// CLI usage, see cmd/oclminify.
package api

import (
	"github.com/starbytesoftware/oclminify/internal/minifier"
)

// Options controls minification behavior, mirroring spec §6's external
// configuration surface.
type Options struct {
	// RenameKernels controls whether __kernel function names (and the
	// function-name table entries they anchor) are renamed. Non-kernel
	// functions and local names are always renamed.
	RenameKernels bool

	// GlobalPostfix is appended to every name allocated at global scope.
	// A non-empty postfix forces RenameKernels on (spec §7).
	GlobalPostfix string

	// KeepNames lists identifiers that must never be renamed, in
	// addition to OpenCL C's own reserved keywords and built-ins.
	KeepNames []string
}

// Result contains the minification output.
type Result struct {
	// Code is the minified OpenCL C source code. Empty if a fatal error
	// occurred.
	Code string

	// KernelNames lists the (possibly renamed) __kernel function names
	// in the order they were declared, mirroring oclminify's metadata
	// output.
	KernelNames []string

	// Functions maps each function's original name to its assigned new
	// name and the new names of its parameters.
	Functions map[string]FunctionRename

	// Diagnostics contains warnings and, for a failed pass, the fatal
	// error that aborted it.
	Diagnostics []Diagnostic

	// OriginalSize is the size of the input in bytes.
	OriginalSize int

	// MinifiedSize is the size of the output in bytes.
	MinifiedSize int
}

// FunctionRename records one function's assigned name and its
// parameters' assigned names.
type FunctionRename struct {
	Name string
	Args map[string]string
}

// Diagnostic is one warning or error produced while minifying.
type Diagnostic struct {
	Severity string
	Message  string
	Line     int
	Column   int
}

// Minify minifies OpenCL C source code with default options: kernel
// renaming on, no global postfix.
func Minify(source string) Result {
	return MinifyWithOptions(source, Options{RenameKernels: true})
}

// MinifyWithOptions minifies OpenCL C source code with custom options.
func MinifyWithOptions(source string, opts Options) Result {
	m := minifier.New(minifier.Options{
		RenameKernels: opts.RenameKernels,
		GlobalPostfix: opts.GlobalPostfix,
		KeepNames:     opts.KeepNames,
	})

	result := m.Minify(source)

	functions := make(map[string]FunctionRename, len(result.Functions))
	for orig, fn := range result.Functions {
		functions[orig] = FunctionRename{Name: fn.Name, Args: fn.Args}
	}

	diags := make([]Diagnostic, len(result.Diagnostics))
	for i, d := range result.Diagnostics {
		diags[i] = Diagnostic{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Line:     d.Range.Start.Line,
			Column:   d.Range.Start.Column,
		}
	}

	return Result{
		Code:         result.Code,
		KernelNames:  result.KernelNames,
		Functions:    functions,
		Diagnostics:  diags,
		OriginalSize: result.Stats.OriginalSize,
		MinifiedSize: result.Stats.MinifiedSize,
	}
}
