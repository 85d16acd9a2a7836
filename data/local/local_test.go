package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenZipOrRawFile(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(raw, []byte("raw"), 0o644))

	bf, err := LoadZipOrRawFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "raw", bf.String())

	// 压缩文件优先
	require.NoError(t, SaveZipFile(raw, []byte("compressed")))
	bf, err = LoadZipOrRawFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "compressed", bf.String())

	_, err = OpenZipOrRawFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestLocalDataPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644))

	Init(dir)
	t.Cleanup(func() { Init("") })
	bf, err := LoadZipOrRawFile("a.csv")
	require.NoError(t, err)
	assert.Equal(t, "x", bf.String())
}
