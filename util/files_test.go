package util

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiles(t *testing.T) {
	rootPath := t.TempDir()

	assert.Nil(t, os.Mkdir(path.Join(rootPath, "subDir1"), 0o755))
	assert.Nil(t, os.Mkdir(path.Join(rootPath, "subDir2"), 0o755))
	assert.Nil(t, os.Mkdir(path.Join(rootPath, "subDir3"), 0o755))
	assert.Nil(t, os.WriteFile(path.Join(rootPath, "subDir1", "test1a"), []byte("Hello1a"), 0o644))
	assert.Nil(t, os.WriteFile(path.Join(rootPath, "subDir1", "test1b"), []byte("Hello1b"), 0o644))
	assert.Nil(t, os.WriteFile(path.Join(rootPath, "subDir2", "test2"), []byte("Hello2"), 0o644))
	assert.Nil(t, os.WriteFile(path.Join(rootPath, "subDir3", "test3"), []byte("Hello3"), 0o644))

	t.Run("list files", func(tt *testing.T) {
		files, err := ListFiles(path.Join(rootPath, "subDir[13]"))
		assert.Nil(tt, err)
		assert.Equal(tt, []string{
			path.Join(rootPath, "subDir1", "test1a"),
			path.Join(rootPath, "subDir1", "test1b"),
			path.Join(rootPath, "subDir3", "test3"),
		}, files)
	})

	dir3, err3 := os.Open(path.Join(rootPath, "subDir3"))
	if !assert.Nil(t, err3) {
		return
	}
	defer dir3.Close()

	t.Run("stat file at", func(tt *testing.T) {
		stat, err := StatFileAt(dir3, "test3")
		assert.Nil(tt, err)
		assert.EqualValues(tt, len("Hello3"), stat.Size)

		_, err = StatFileAt(dir3, "test4")
		assert.ErrorIs(tt, err, os.ErrNotExist)
	})

	t.Run("unlink file at", func(tt *testing.T) {
		assert.Nil(tt, UnlinkFileAt(dir3, "test3"))
		_, err := os.Stat(path.Join(rootPath, "subDir3", "test3"))
		assert.True(tt, os.IsNotExist(err))
	})
}
