package snapshot

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestArchiveDirRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "deep.txt"), []byte("world"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, archiveDir(src, &buf))

	dest := t.TempDir()
	require.NoError(t, extractArchive(&buf, dest))

	top, err := os.ReadFile(filepath.Join(dest, "top.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(top))

	deep, err := os.ReadFile(filepath.Join(dest, "nested", "deep.txt"))
	require.NoError(t, err)
	require.Equal(t, "world", string(deep))
}

func TestExtractArchiveRejectsPathEscape(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "../escaped.txt",
		Size: 1,
		Mode: 0o644,
	}))
	_, err := tw.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	dest := t.TempDir()
	err = extractArchive(&buf, dest)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escaped.txt"))
	require.True(t, os.IsNotExist(statErr))
}
