// Package builtins holds the static catalog of OpenCL C built-in
// functions and constants, and the return-type resolution rules the
// rewriter needs to type-check a struct/array access chain enough to
// find the right declaration to rename through (spec §4.2, §4.4). The
// catalog is table-driven and populated from init(), following the
// structural pattern of the teacher's internal/builtins (a Table map
// built by several register* helpers called from init()), but the
// entries themselves are grounded in oclminify's functions.py BUILTIN
// class: CONSTANTS, CAST_FUNCTIONS, GEN1_FUNCTIONS, GEN2_FUNCTIONS,
// FIXED_FUNCTIONS_MAP and OTHER_FUNCTIONS_MAP.
//
// Three spellings in the Python source are string-literal concatenation
// bugs (adjacent string literals with no separating comma, which Python
// silently merges) rather than intentional built-ins, and two constant
// names are typos; spec §9's Design Notes call these out as bugs to
// fix, unlike the swizzle no-op behavior which is intentionally
// reproduced. This catalog carries the corrected spellings:
// CLK_ADDRESS_NONE (not CLK_ADdRESS_NONE), CLK_IMAGE_MEM_FENCE (not
// CLK_IMAE_MEM_FENCE), "acospi" and "asin" as two separate GEN1 entries
// (not the merged "acospiasin"), "pow" and "pown" as two separate
// entries, and "normalize" and "fast_normalize" as two separate
// entries.
package builtins

import "strconv"

// ReturnKind distinguishes the resolution family used for a built-in's
// return type, mirroring the five-tier order of get_func_return_type.
type ReturnKind int

const (
	ReturnVoid ReturnKind = iota
	ReturnFixed
	ReturnSameAsArg0 // GEN1: same vector/scalar type as the first argument
	ReturnSameAsArg1 // GEN2: same type as the second argument
	ReturnByCastName // convert_T / as_T: the name itself encodes T
	ReturnRule       // one of the special-cased functions below
)

// Builtin describes one catalog entry.
type Builtin struct {
	Name  string
	Kind  ReturnKind
	Fixed string // used when Kind == ReturnFixed or ReturnByCastName
}

// Table is the full catalog, keyed by built-in name.
var Table = map[string]*Builtin{}

// Constants holds OpenCL C predefined macro/constant names and their
// types (CONSTANTS in functions.py), all scalar, all reserved from
// renaming.
var Constants = map[string]string{}

func init() {
	registerConstants()
	registerCastFunctions()
	registerGen1Functions()
	registerGen2Functions()
	registerFixedFunctions()
	registerRuleFunctions()
}

func add(name string, kind ReturnKind, fixed string) {
	Table[name] = &Builtin{Name: name, Kind: kind, Fixed: fixed}
}

// IsBuiltin reports whether name is a known built-in function.
func IsBuiltin(name string) bool {
	_, ok := Table[name]
	return ok
}

// IsConstant reports whether name is a predefined OpenCL constant.
func IsConstant(name string) bool {
	_, ok := Constants[name]
	return ok
}

func registerConstants() {
	for name, typ := range map[string]string{
		"CHAR_BIT": "int", "CHAR_MAX": "int", "CHAR_MIN": "int",
		"INT_MAX": "int", "INT_MIN": "int", "LONG_MAX": "long", "LONG_MIN": "long",
		"SCHAR_MAX": "int", "SCHAR_MIN": "int", "SHRT_MAX": "int", "SHRT_MIN": "int",
		"UCHAR_MAX": "uint", "USHRT_MAX": "uint", "UINT_MAX": "uint", "ULONG_MAX": "ulong",
		"FLT_DIG": "int", "FLT_MANT_DIG": "int", "FLT_MAX_10_EXP": "int",
		"FLT_MAX_EXP": "int", "FLT_MIN_10_EXP": "int", "FLT_MIN_EXP": "int",
		"FLT_RADIX": "int", "FLT_MAX": "float", "FLT_MIN": "float", "FLT_EPSILON": "float",
		"M_E_F": "float", "M_LOG2E_F": "float", "M_LOG10E_F": "float", "M_LN2_F": "float",
		"M_LN10_F": "float", "M_PI_F": "float", "M_PI_2_F": "float", "M_PI_4_F": "float",
		"M_1_PI_F": "float", "M_2_PI_F": "float", "M_2_SQRTPI_F": "float",
		"M_SQRT2_F": "float", "M_SQRT1_2_F": "float",
		"M_E": "double", "M_LOG2E": "double", "M_LOG10E": "double", "M_LN2": "double",
		"M_LN10": "double", "M_PI": "double", "M_PI_2": "double", "M_PI_4": "double",
		"M_1_PI": "double", "M_2_PI": "double", "M_2_SQRTPI": "double",
		"M_SQRT2": "double", "M_SQRT1_2": "double",
		"MAXFLOAT": "float", "HUGE_VALF": "float", "HUGE_VAL": "double", "INFINITY": "float", "NAN": "float",
		"CLK_LOCAL_MEM_FENCE": "cl_mem_fence_flags", "CLK_GLOBAL_MEM_FENCE": "cl_mem_fence_flags",
		"CLK_IMAGE_MEM_FENCE": "cl_mem_fence_flags",
		"CLK_NORMALIZED_COORDS_TRUE": "sampler_t", "CLK_NORMALIZED_COORDS_FALSE": "sampler_t",
		"CLK_ADDRESS_NONE": "sampler_t", "CLK_ADDRESS_CLAMP_TO_EDGE": "sampler_t",
		"CLK_ADDRESS_CLAMP": "sampler_t", "CLK_ADDRESS_REPEAT": "sampler_t",
		"CLK_ADDRESS_MIRRORED_REPEAT": "sampler_t",
		"CLK_FILTER_NEAREST":         "sampler_t", "CLK_FILTER_LINEAR": "sampler_t",
	} {
		Constants[name] = typ
	}
}

// castTypes and vectorSizes mirror functions.py's Cartesian product for
// CAST_FUNCTIONS: convert_<type><size?>[_sat][_rte|_rtz|_rtp|_rtn] and
// as_<type><size>.
var castTypes = []string{"char", "uchar", "short", "ushort", "int", "uint", "long", "ulong", "float", "double"}
var vectorSizes = []string{"", "2", "3", "4", "8", "16"}
var roundingModes = []string{"", "_rte", "_rtz", "_rtp", "_rtn"}

func registerCastFunctions() {
	for _, t := range castTypes {
		for _, size := range vectorSizes {
			for _, sat := range []string{"", "_sat"} {
				for _, rnd := range roundingModes {
					add("convert_"+t+size+sat+rnd, ReturnByCastName, t+size)
				}
			}
			if size != "" {
				add("as_"+t+size, ReturnByCastName, t+size)
			}
		}
	}
}

// registerGen1Functions ports GEN1_FUNCTIONS: built-ins whose return
// type is the same as their first argument's type. The list below
// separates the three name pairs that the Python source accidentally
// merges via adjacent-string-literal concatenation (see package doc).
func registerGen1Functions() {
	names := []string{
		"acos", "acosh", "acospi", "asin", "asinh", "asinpi", "atan", "atan2",
		"atanh", "atanpi", "atan2pi", "cbrt", "ceil", "copysign", "cos", "cosh",
		"cospi", "erfc", "erf", "exp", "exp2", "exp10", "expm1", "fabs", "fdim",
		"floor", "fma", "fmax", "fmin", "fmod", "fract", "hypot", "ilogb",
		"ldexp", "lgamma", "log", "log2", "log10", "log1p", "logb", "mad",
		"maxmag", "minmag", "modf", "nextafter", "pow", "pown", "powr",
		"remainder", "remquo", "rint", "rootn", "round", "rsqrt", "sin",
		"sincos", "sinh", "sinpi", "sqrt", "tan", "tanh", "tanpi", "tgamma",
		"trunc", "half_cos", "half_divide", "half_exp", "half_exp2",
		"half_exp10", "half_log", "half_log2", "half_log10", "half_powr",
		"half_recip", "half_rsqrt", "half_sin", "half_sqrt", "half_tan",
		"native_cos", "native_divide", "native_exp", "native_exp2",
		"native_exp10", "native_log", "native_log2", "native_log10",
		"native_powr", "native_recip", "native_rsqrt", "native_sin",
		"native_sqrt", "native_tan",
		"abs_diff", "add_sat", "hadd", "rhadd", "clamp", "mad_hi", "mad_sat",
		"max", "min", "mul_hi", "rotate", "sub_sat",
		"cross", "normalize", "fast_normalize",
		"isequal", "isnotequal", "isgreater", "isgreaterequal", "isless",
		"islessequal", "islessgreater", "isfinite", "isinf", "isnan",
		"isnormal", "isordered", "isunordered", "signbit",
	}
	for _, n := range names {
		add(n, ReturnSameAsArg0, "")
	}
}

// registerGen2Functions ports GEN2_FUNCTIONS: the atomic read-modify-
// write family, whose return type matches their second argument (the
// value being combined with *p).
func registerGen2Functions() {
	for _, n := range []string{
		"atomic_add", "atomic_sub", "atomic_xchg", "atomic_min", "atomic_max",
		"atomic_and", "atomic_or", "atomic_xor",
		"atom_add", "atom_sub", "atom_xchg", "atom_min", "atom_max",
		"atom_and", "atom_or", "atom_xor",
	} {
		add(n, ReturnSameAsArg1, "")
	}
}

// registerFixedFunctions ports FIXED_FUNCTIONS_MAP: built-ins whose
// return type does not depend on their arguments at all, including the
// generated vstore/vload_half/vstore_half/vstorea_half/vloada_half
// families.
func registerFixedFunctions() {
	for name, ret := range map[string]string{
		"atomic_inc": "uint", "atomic_dec": "uint", "atomic_cmpxchg": "uint",
		"atom_inc": "ulong", "atom_dec": "ulong", "atom_cmpxchg": "ulong",
		"barrier": "void", "mem_fence": "void", "read_mem_fence": "void", "write_mem_fence": "void",
		"get_work_dim": "uint", "get_global_size": "size_t", "get_global_id": "size_t",
		"get_local_size": "size_t", "get_enqueued_local_size": "size_t", "get_local_id": "size_t",
		"get_num_groups": "size_t", "get_group_id": "size_t", "get_global_offset": "size_t",
		"get_global_linear_id": "size_t", "get_local_linear_id": "size_t",
		"printf": "int", "vprintf": "int",
		"select":                         "void",
		"async_work_group_copy":         "event_t",
		"async_work_group_strided_copy": "event_t",
		"wait_group_events":             "void",
		"prefetch":                      "void",
		"work_group_barrier":            "void",
		"sub_group_barrier":             "void",
		"get_sub_group_size":            "uint",
		"get_max_sub_group_size":        "uint",
		"get_num_sub_groups":            "uint",
		"get_sub_group_id":              "uint",
		"get_sub_group_local_id":        "uint",
	} {
		add(name, ReturnFixed, ret)
	}
	for _, size := range []string{"2", "3", "4", "8", "16"} {
		add("vstore"+size, ReturnFixed, "void")
		add("vload_half"+size, ReturnFixed, "float"+size)
		add("vstore_half"+size, ReturnFixed, "void")
		add("vstorea_half"+size, ReturnFixed, "void")
		add("vloada_half"+size, ReturnFixed, "float"+size)
	}
	add("vload_half", ReturnFixed, "float")
	add("vstore_half", ReturnFixed, "void")
}

// registerRuleFunctions ports OTHER_FUNCTIONS_MAP, the functions whose
// return type needs a small bespoke rule rather than a table lookup or
// an arg-copy. The actual rule logic lives in ResolveReturnType; this
// just registers the names under ReturnRule so the dispatcher knows to
// call into that logic. A name that is also in the GEN1 list (ilogb and
// the relational functions) is overwritten here, so the rule wins.
func registerRuleFunctions() {
	names := []string{
		"ilogb", "nan", "abs", "upsample",
		"dot", "distance", "length", "fast_distance", "fast_length",
		"get_image_width", "get_image_height", "get_image_depth",
		"get_image_channel_data_type", "get_image_channel_order",
		"get_image_dim",
		"shuffle", "shuffle2",
		"isequal", "isnotequal", "isgreater", "isgreaterequal", "isless",
		"islessequal", "islessgreater", "isordered", "isunordered",
	}
	for _, n := range names {
		add(n, ReturnRule, "")
	}
	for _, size := range []string{"2", "3", "4", "8", "16"} {
		add("vload"+size, ReturnRule, "")
	}
}

// vectorBase and vectorSize are the small helpers ResolveReturnType
// needs; they operate on plain type-name strings rather than ast.Type
// so this package stays independent of internal/ast (callers reduce an
// ast.Type to its canonical spelling before calling in, the same
// reduction the printer performs when emitting a type).
func vectorBase(t string) string {
	for len(t) > 0 {
		c := t[len(t)-1]
		if c < '0' || c > '9' {
			break
		}
		t = t[:len(t)-1]
	}
	return t
}

func vectorSize(t string) string {
	i := len(t)
	for i > 0 {
		c := t[i-1]
		if c < '0' || c > '9' {
			break
		}
		i--
	}
	return t[i:]
}

// upsampleWiden maps the input scalar base type of upsample's first
// argument to the next-wider result type (char->short, short->int,
// int->long, and their unsigned counterparts), per
// _upsample_function_return_type.
var upsampleWiden = map[string]string{
	"char": "short", "uchar": "ushort",
	"short": "int", "ushort": "uint",
	"int": "long", "uint": "ulong",
}

// ResolveReturnType implements get_func_return_type's five-tier order
// for a call to name with the given argument type spellings (already
// canonicalized, e.g. "float4", "int", "uchar2"). It returns "void" for
// an unresolved/unknown built-in, per spec §4.2's fallback rule.
func ResolveReturnType(name string, argTypes []string) string {
	b, ok := Table[name]
	if !ok {
		return "void"
	}
	switch b.Kind {
	case ReturnFixed, ReturnByCastName:
		return b.Fixed
	case ReturnSameAsArg0:
		if len(argTypes) > 0 {
			return argTypes[0]
		}
		return "void"
	case ReturnSameAsArg1:
		if len(argTypes) > 1 {
			return argTypes[1]
		}
		return "void"
	case ReturnRule:
		return resolveRule(name, argTypes)
	default:
		return "void"
	}
}

func resolveRule(name string, argTypes []string) string {
	switch {
	case name == "ilogb":
		return "int"
	case name == "nan":
		if len(argTypes) > 0 {
			return "float" + vectorSize(argTypes[0])
		}
		return "float"
	case name == "abs":
		if len(argTypes) == 0 {
			return "void"
		}
		base := vectorBase(argTypes[0])
		size := vectorSize(argTypes[0])
		if len(base) == 0 || base[0] != 'u' {
			base = "u" + base
		}
		return base + size
	case name == "upsample":
		if len(argTypes) == 0 {
			return "void"
		}
		base := vectorBase(argTypes[0])
		size := vectorSize(argTypes[0])
		if widened, ok := upsampleWiden[base]; ok {
			return widened + size
		}
		return argTypes[0]
	case name == "dot" || name == "distance" || name == "length" ||
		name == "fast_distance" || name == "fast_length":
		return "float"
	case isRelational(name):
		if len(argTypes) > 0 && vectorBase(argTypes[0]) == "float" {
			return "int" + vectorSize(argTypes[0])
		}
		return "long"
	case name == "get_image_width" || name == "get_image_height" ||
		name == "get_image_depth" || name == "get_image_channel_data_type" ||
		name == "get_image_channel_order":
		return "int"
	case name == "get_image_dim":
		return "int2"
	case len(name) > 5 && name[:5] == "vload" && name != "vload":
		sizeStr := name[5:]
		if _, err := strconv.Atoi(sizeStr); err == nil && len(argTypes) > 1 {
			return vectorBase(argTypes[1]) + sizeStr
		}
		return "void"
	case name == "shuffle" || name == "shuffle2":
		if len(argTypes) > 0 {
			return vectorBase(argTypes[0])
		}
		return "void"
	default:
		return "void"
	}
}

func isRelational(name string) bool {
	switch name {
	case "isequal", "isnotequal", "isgreater", "isgreaterequal", "isless",
		"islessequal", "islessgreater", "isordered", "isunordered":
		return true
	}
	return false
}

// CanonicalTypeNames maps the long-form unsigned-prefixed spellings to
// OpenCL C's short aliases, mirroring _generate_type's type-symbol
// rewrite (IGNORE_TYPE_SYMBOLS in minifier.py is the inverse of this:
// entries already in short form are left untouched).
var CanonicalTypeNames = map[string]string{
	"unsigned char":  "uchar",
	"unsigned short": "ushort",
	"unsigned int":   "uint",
	"unsigned long":  "ulong",
}
