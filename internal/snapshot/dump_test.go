package snapshot

import (
	"archive/tar"
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/codec"
	"github.com/Aman-CERP/searchd/internal/store"
	"github.com/Aman-CERP/searchd/internal/task"
)

// readArchiveFile pulls one named member's contents out of a gzip-tar
// archive, for asserting on a dump's staged layout without needing a
// second extraction helper in the production package.
func readArchiveFile(t *testing.T, archivePath, name string) []byte {
	t.Helper()
	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			t.Fatalf("archive member %q not found", name)
		}
		require.NoError(t, err)
		if hdr.Name == name {
			var buf bytes.Buffer
			_, err := io.Copy(&buf, tr)
			require.NoError(t, err)
			return buf.Bytes()
		}
	}
}

func TestDumpWritesTasksSettingsAndDocuments(t *testing.T) {
	root := t.TempDir()

	tasks, err := task.Open(filepath.Join(root, "tasks.db"))
	require.NoError(t, err)
	defer tasks.Close()
	_, err = tasks.Register(task.RegisterOptions{
		IndexUID: "movies",
		Content:  task.Content{Kind: task.ContentIndexCreation},
	})
	require.NoError(t, err)

	idx, err := store.Open("movies", filepath.Join(root, "movies.db"))
	require.NoError(t, err)
	defer idx.Close()

	fields := codec.NewFieldsIDMap()
	idField := fields.Insert("id")
	titleField := fields.Insert("title")

	w := codec.NewKVWriter()
	require.NoError(t, w.Insert(idField, []byte(`"1"`)))
	require.NoError(t, w.Insert(titleField, []byte(`"Dune"`)))

	require.NoError(t, idx.Update(func(tx *bbolt.Tx) error {
		if err := store.PersistNewFieldTx(tx, idField, "id"); err != nil {
			return err
		}
		if err := store.PersistNewFieldTx(tx, titleField, "title"); err != nil {
			return err
		}
		if err := store.PutTx(tx, 0, w.Bytes(), codec.Dictionary{}); err != nil {
			return err
		}
		if err := store.PutExternalIDTx(tx, "1", 0); err != nil {
			return err
		}
		return store.SaveSettingsTx(tx, store.Settings{PrimaryKey: "id"})
	}))

	settings, err := idx.LoadSettings()
	require.NoError(t, err)

	dumpDir := filepath.Join(root, "dumps")
	result, err := Dump(DumpOptions{DumpDir: dumpDir, Name: "searchd-20260731"}, tasks, []DumpIndex{
		{UID: "movies", Settings: settings, Fields: fields, Index: idx},
	})
	require.NoError(t, err)
	require.FileExists(t, result.Path)

	meta := readArchiveFile(t, result.Path, "metadata.json")
	var metaDoc dumpMetadata
	require.NoError(t, json.Unmarshal(meta, &metaDoc))
	require.Equal(t, DumpFormatVersion, metaDoc.DumpVersion)

	taskQueue := readArchiveFile(t, result.Path, "tasks/queue.jsonl")
	scanner := bufio.NewScanner(bytes.NewReader(taskQueue))
	var taskLines int
	for scanner.Scan() {
		taskLines++
		var dumped task.Task
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &dumped))
		require.Equal(t, "movies", dumped.IndexUID)
	}
	require.Equal(t, 1, taskLines)

	settingsRaw := readArchiveFile(t, result.Path, "indexes/movies/settings.json")
	var dumpedSettings store.Settings
	require.NoError(t, json.Unmarshal(settingsRaw, &dumpedSettings))
	require.Equal(t, "id", dumpedSettings.PrimaryKey)

	docsRaw := readArchiveFile(t, result.Path, "indexes/movies/documents.jsonl")
	var doc map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(docsRaw), &doc))
	require.Equal(t, "1", doc["id"])
	require.Equal(t, "Dune", doc["title"])
}
