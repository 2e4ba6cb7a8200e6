package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinifyDefaultsRenameKernelsOn(t *testing.T) {
	src := `__kernel void scale(__global float* data, float factor) {
		data[get_global_id(0)] *= factor;
	}`
	result := Minify(src)
	require.Empty(t, result.Diagnostics)
	require.Len(t, result.KernelNames, 1)
	assert.NotEqual(t, "scale", result.KernelNames[0])
	assert.Equal(t, len(src), result.OriginalSize)
	assert.Greater(t, result.OriginalSize, result.MinifiedSize)
}

func TestMinifyWithOptionsExposesFunctionRenameTable(t *testing.T) {
	src := `int helper(int x) { return x + 1; }
	__kernel void k(__global int* a) { a[0] = helper(a[0]); }`
	result := MinifyWithOptions(src, Options{RenameKernels: true})
	require.Empty(t, result.Diagnostics)
	rename, ok := result.Functions["helper"]
	require.True(t, ok)
	assert.NotEqual(t, "helper", rename.Name)
	argRename, ok := rename.Args["x"]
	require.True(t, ok)
	assert.NotEqual(t, "x", argRename)
}
