// Package scope implements the declaration-name allocator and scope
// stack described by the rewriter's component design: a stack of scopes
// mapping an original declaration name to its Declaration record, with
// deterministic smallest-available-name allocation. It is grounded on
// oclminify's Minifier.declaration_scopes / _generate_unique_declaration_name
// / _is_declaration_name_unique / _index_to_alpha_str, not on a
// frequency-sorted slot allocator: every name is assigned in strict
// visitation order, so the same input always renames to the same output.
package scope

import "strings"

// Declaration records a single renamed name, matching spec §3's
// Declaration record (name, type, children, is_definition). There is no
// Type field, because the scope package must not depend on internal/ast
// to avoid an import cycle with the rewriter that constructs these
// records from ast.Type values; callers keep whatever type information
// they need in Aux (the rewriter stores a variable's struct tag there).
type Declaration struct {
	OriginalName string
	NewName      string
	IsDefinition bool
	Children     map[string]*Declaration
	Aux          interface{}
}

// Function records a renamed function along with the rename map for its
// own parameters, matching spec §3's Function record. ReturnType is
// resolved in a second pass: a FuncDef's own name and parameter names
// are known and recorded before its body and return type are visited,
// so the placeholder is created first and finalized once the return
// type has been resolved.
type Function struct {
	OriginalName       string
	NewName            string
	Args               map[string]*Declaration
	ReturnType          interface{}
	ReturnTypeResolved bool
}

// alphabet is the deterministic base used by the allocator: lowercase
// then uppercase letters, mirroring oclminify's _index_to_alpha_str
// which walks string.ascii_letters (a-z then A-Z) as a 52-digit
// positional numeral system, most-significant digit first.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IndexToAlphaString converts a zero-based index into the shortest
// possible name over `alphabet`, in the same big-endian, no-leading-zero
// numbering as oclminify's _index_to_alpha_str: 0->"a", 1->"b", ...,
// 51->"Z", 52->"aa", 53->"ab", and so on. This differs from esbuild-style
// minifiers (and from the teacher's NumberToMinifiedName) which treat
// the first character specially to avoid a leading digit; OpenCL-C
// identifiers cannot start with a digit either way, since `alphabet`
// never contains one, so no special case for the leading character is
// needed here.
func IndexToAlphaString(index int) string {
	base := len(alphabet)
	if index < base {
		return string(alphabet[index])
	}
	var digits []byte
	n := index + 1
	for n > 0 {
		n--
		digits = append(digits, alphabet[n%base])
		n /= base
	}
	// digits were appended least-significant first; reverse for
	// most-significant-first output.
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// Stack is a push/pop stack of lexical scopes, mirroring
// Minifier.declaration_scopes: index 0 is the persistent global scope,
// and Push/Pop manage nested Compound/FuncDef/Struct-body scopes.
type Stack struct {
	scopes     []map[string]*Declaration
	highWater  []int           // smallest index not yet tried by Allocate, one per live scope
	reserved   map[string]bool // built-in/constant/type names that can never be assigned
	funcNames  map[string]bool // names already used by a Function.NewName, checked for collisions
	globalPost string
}

// New creates a Stack with a single (global) scope and the given
// reserved-name set (built-in functions, constants, and type keywords:
// spec §4.5 says allocation must not collide with either).
func New(reserved map[string]bool, globalPostfix string) *Stack {
	return &Stack{
		scopes:     []map[string]*Declaration{{}},
		highWater:  []int{0},
		reserved:   reserved,
		funcNames:  map[string]bool{},
		globalPost: globalPostfix,
	}
}

// Push opens a new nested scope, as the rewriter does on entering a
// Compound, FuncDef parameter list, or struct body. The new scope's
// high-water mark starts out a copy of its parent's: a name the parent
// has already claimed must stay out of reach while the parent is still
// open (so a nested declaration that shadows an enclosing one gets a
// distinct name), but growth from here is tracked only for this scope,
// so it can be dropped independently of the parent on Pop.
func (s *Stack) Push() {
	s.scopes = append(s.scopes, map[string]*Declaration{})
	s.highWater = append(s.highWater, s.highWater[len(s.highWater)-1])
}

// Pop closes the innermost scope, discarding its high-water mark along
// with it: any name claimed only while it was open (a local variable, a
// struct or enum tag allocated inside it, ...) becomes available again
// once it is gone, since the parent's own mark was never advanced by
// the child's allocations. Popping the global scope is a programmer
// error since the global scope's lifetime is the whole pass.
func (s *Stack) Pop() {
	if len(s.scopes) <= 1 {
		panic("scope: cannot pop the global scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	s.highWater = s.highWater[:len(s.highWater)-1]
}

// Depth reports how many scopes are currently open, 1 meaning only the
// global scope.
func (s *Stack) Depth() int {
	return len(s.scopes)
}

// IsGlobal reports whether the innermost scope is the global scope,
// used to decide whether the global postfix applies (oclminify only
// appends it when len(declaration_scopes) == 1).
func (s *Stack) IsGlobal() bool {
	return len(s.scopes) == 1
}

// RegisterFuncName reserves a name in the function-name table so later
// declaration allocation does not collide with a renamed function, and
// vice versa; oclminify checks both self.functions and
// self.declaration_scopes when testing uniqueness.
func (s *Stack) RegisterFuncName(name string) {
	s.funcNames[name] = true
}

// isUnique mirrors _is_declaration_name_unique: a candidate name is
// unique if it does not collide with any scope on the stack, the
// reserved set, or the function-name table.
func (s *Stack) isUnique(name string) bool {
	if s.reserved[name] {
		return false
	}
	if s.funcNames[name] {
		return false
	}
	for _, scope := range s.scopes {
		if _, ok := scope[name]; ok {
			return false
		}
	}
	return true
}

// Allocate produces the shortest unused short name, applying the global
// postfix when the stack is currently at global scope and a postfix was
// configured, exactly as _generate_unique_declaration_name does. The
// search resumes from the innermost scope's own high-water mark rather
// than a single persistent counter, so a name only tried-and-claimed by
// a now-popped scope (a function's locals, a struct tag never recorded
// as a Declaration, ...) is available again once that scope is gone,
// while a name already tried within the *current* scope's lifetime is
// never handed out twice even if nothing else ever recorded it as
// taken.
func (s *Stack) Allocate() string {
	top := len(s.highWater) - 1
	for index := s.highWater[top]; ; index++ {
		candidate := IndexToAlphaString(index)
		if s.IsGlobal() && s.globalPost != "" {
			candidate = candidate + s.globalPost
		}
		if s.isUnique(candidate) {
			s.highWater[top] = index + 1
			return candidate
		}
	}
}

// Declare allocates a new name for originalName, records a Declaration
// for it in the innermost scope, and returns the Declaration. If
// originalName is already declared in the innermost scope (a
// re-declaration, which is not valid C but is tolerated defensively),
// the existing Declaration is returned unchanged.
func (s *Stack) Declare(originalName string, isDefinition bool) *Declaration {
	top := s.scopes[len(s.scopes)-1]
	if existing, ok := top[originalName]; ok {
		return existing
	}
	decl := &Declaration{
		OriginalName: originalName,
		NewName:      s.Allocate(),
		IsDefinition: isDefinition,
		Children:     map[string]*Declaration{},
	}
	top[originalName] = decl
	return decl
}

// Resolve walks the scope stack innermost-first looking for
// originalName, mirroring _get_new_declaration_name's reversed walk.
// The bool result is false when no declaration is found anywhere on the
// stack (an unresolved reference, spec §7's warning case).
func (s *Stack) Resolve(originalName string) (*Declaration, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if decl, ok := s.scopes[i][originalName]; ok {
			return decl, true
		}
	}
	return nil, false
}

// NameForIdent resolves originalName to its renamed spelling, falling
// back to the original name unchanged when it cannot be resolved (the
// reserved-name / unresolved-reference fallback of spec §4.5).
func (s *Stack) NameForIdent(originalName string) string {
	if decl, ok := s.Resolve(originalName); ok {
		return decl.NewName
	}
	return originalName
}

// DefaultReservedNames returns the OpenCL C keyword and type-keyword set
// that must never be assigned as a generated name, mirroring the
// teacher's ComputeReservedNames (WGSL keywords/types) generalized to
// the OpenCL C grammar. Built-in function and constant names are added
// separately by the caller from internal/builtins, since this package
// must not import it (it is imported by the rewriter alongside
// builtins, and builtins has no need of scope).
func DefaultReservedNames() map[string]bool {
	names := map[string]bool{}
	for _, n := range strings.Fields(strings.Join([]string{
		"auto break case char const continue default do double",
		"else enum extern float for goto if inline int long",
		"register restrict return short signed sizeof static",
		"struct switch typedef union unsigned void volatile while",
		"_Bool _Complex _Imaginary",
		"__kernel kernel __global global __local local __constant constant",
		"__private private __read_only read_only __write_only write_only",
		"__read_write read_write __attribute__ __attribute",
		"uchar ushort uint ulong half bool",
		"image2d_t image3d_t image2d_array_t image1d_t image1d_buffer_t",
		"image1d_array_t sampler_t event_t clk_event_t queue_t",
		"ndrange_t reserve_id_t size_t ptrdiff_t intptr_t uintptr_t",
		"true false NULL",
	}, " ")) {
		names[n] = true
	}
	for _, base := range []string{"char", "uchar", "short", "ushort", "int", "uint", "long", "ulong", "float", "double", "half"} {
		for _, n := range []string{"2", "3", "4", "8", "16"} {
			names[base+n] = true
		}
	}
	return names
}
