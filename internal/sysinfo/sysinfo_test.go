package sysinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArch(t *testing.T) {
	assert.Equal(t, "x86_64", NormalizeArch("amd64"))
	assert.Equal(t, "arm64", NormalizeArch("arm64"))
	assert.Equal(t, "386", NormalizeArch("386"))
	assert.Equal(t, "", NormalizeArch(""))
}

func TestCollect(t *testing.T) {
	env := Collect()

	assert.NotEmpty(t, env.OSName)
	assert.Equal(t, NormalizeArch(runtime.GOARCH), env.OSArch)
	assert.GreaterOrEqual(t, env.Cores, 1)
	assert.Equal(t, runtime.Version(), env.Runtime)
}
