package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectedBugSpellingsArePresent(t *testing.T) {
	for _, name := range []string{"acospi", "asin", "pow", "pown", "normalize", "fast_normalize"} {
		assert.True(t, IsBuiltin(name), "%q should be a separate built-in entry", name)
	}
	assert.False(t, IsBuiltin("acospiasin"))
	assert.False(t, IsBuiltin("normalizefast_normalize"))
}

func TestCorrectedConstantSpellingsArePresent(t *testing.T) {
	assert.True(t, IsConstant("CLK_ADDRESS_NONE"))
	assert.True(t, IsConstant("CLK_IMAGE_MEM_FENCE"))
	assert.False(t, IsConstant("CLK_ADdRESS_NONE"))
	assert.False(t, IsConstant("CLK_IMAE_MEM_FENCE"))
}

func TestResolveReturnTypeSameAsArg0(t *testing.T) {
	assert.Equal(t, "float4", ResolveReturnType("sqrt", []string{"float4"}))
	assert.Equal(t, "void", ResolveReturnType("sqrt", nil))
}

func TestResolveReturnTypeSameAsArg1(t *testing.T) {
	assert.Equal(t, "int", ResolveReturnType("atomic_add", []string{"int*", "int"}))
}

func TestResolveReturnTypeFixed(t *testing.T) {
	assert.Equal(t, "void", ResolveReturnType("barrier", []string{"cl_mem_fence_flags"}))
	assert.Equal(t, "size_t", ResolveReturnType("get_global_id", []string{"uint"}))
}

func TestResolveReturnTypeByCastName(t *testing.T) {
	assert.Equal(t, "float4", ResolveReturnType("convert_float4", []string{"int4"}))
	assert.Equal(t, "int2", ResolveReturnType("as_int2", []string{"float2"}))
}

func TestResolveReturnTypeRuleAbsWidensToUnsigned(t *testing.T) {
	assert.Equal(t, "uint4", ResolveReturnType("abs", []string{"int4"}))
	assert.Equal(t, "uchar", ResolveReturnType("abs", []string{"uchar"}))
}

func TestResolveReturnTypeRuleUpsampleWidens(t *testing.T) {
	assert.Equal(t, "short4", ResolveReturnType("upsample", []string{"char4"}))
	assert.Equal(t, "ulong", ResolveReturnType("upsample", []string{"uint"}))
}

func TestResolveReturnTypeRuleRelationalPicksIntOrLong(t *testing.T) {
	assert.Equal(t, "int4", ResolveReturnType("isequal", []string{"float4", "float4"}))
	assert.Equal(t, "long", ResolveReturnType("isequal", []string{"int", "int"}))
}

func TestResolveReturnTypeUnknownBuiltinIsVoid(t *testing.T) {
	assert.Equal(t, "void", ResolveReturnType("not_a_builtin", []string{"int"}))
}

func TestCanonicalTypeNames(t *testing.T) {
	assert.Equal(t, "uchar", CanonicalTypeNames["unsigned char"])
	assert.Equal(t, "ulong", CanonicalTypeNames["unsigned long"])
}
