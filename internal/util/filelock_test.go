package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 512), 0644))

	locked, err := CheckLock(path)
	require.NoError(t, err)
	assert.False(t, locked)

	l, err := Lock(path)
	require.NoError(t, err)

	_, err = Lock(path)
	assert.ErrorIs(t, err, ErrLocked)

	locked, err = CheckLock(path)
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, l.Unlock())

	l, err = Lock(path)
	require.NoError(t, err)
	require.NoError(t, l.Unlock())
}

func TestLockMissingFile(t *testing.T) {
	_, err := Lock(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
}
