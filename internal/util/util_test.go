package util_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/larkwiot/shelfscan/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Id     string `json:"id"`
	Member string `json:"member"`
}

func TestJsonStreamWriterProducesObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	stream, err := util.NewJsonStreamWriter[entry](path, util.JsonItem(func(e entry) string { return e.Id }))
	require.NoError(t, err)

	var _ util.ObjectWriter[entry] = stream

	stream.WriteObject(entry{Id: "a", Member: "MEM001"})
	stream.WriteObject(entry{Id: "b\"quoted", Member: "MEM002"})
	stream.Close()
	stream.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]entry{
		"a":        {Id: "a", Member: "MEM001"},
		"b\"quoted": {Id: "b\"quoted", Member: "MEM002"},
	}, decoded)
}

func TestJsonStreamWriterEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	stream, err := util.NewJsonStreamWriter[entry](path, util.JsonItem(func(e entry) string { return e.Id }))
	require.NoError(t, err)
	stream.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestJsonStreamWriterRefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := util.NewJsonStreamWriter[entry](path, util.JsonItem(func(e entry) string { return e.Id }))
	assert.Error(t, err)
}

func TestExpandUserAndPathExists(t *testing.T) {
	t.Setenv("HOME", "/home/desk")
	assert.Equal(t, "/home/desk/scans.json", util.ExpandUser("~/scans.json"))
	assert.Equal(t, "/tmp/scans.json", util.ExpandUser("/tmp/scans.json"))

	exists, _ := util.PathExists(t.TempDir())
	assert.True(t, exists)
	exists, _ = util.PathExists(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, exists)
}
