package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppend(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC)
	l, err := NewLog(filepath.Join(dir, "logs"), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs", "19-10-2026_14h-05m.txt"), l.Path())

	require.NoError(t, l.Append("ovs-vsctl add-br br-7-0", ""))
	require.NoError(t, l.Append("ovs-vsctl show", "Bridge br-7-0\n"))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Equal(t, []string{
		"ovs-vsctl add-br br-7-0",
		separator,
		"ovs-vsctl show",
		"Bridge br-7-0",
		separator,
	}, lines)
}

type host struct {
	Name   string `json:"name"`
	HostID int    `json:"hostId"`
}

func TestRecordsSearch(t *testing.T) {
	r := NewRecords(filepath.Join(t.TempDir(), "records.json"))

	all, err := r.All()
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, r.Append(host{Name: "vm1", HostID: 7}))
	require.NoError(t, r.Append(host{Name: "vm2", HostID: 70}))
	require.NoError(t, r.Append(Record{"name": "vm1-copy", "hostId": 7}))

	got, err := r.Search("hostId", "7")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "vm1", got[0]["name"])
	assert.Equal(t, "vm1-copy", got[1]["name"])

	got, err = r.Search("name", "vm")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Search("missing", "7")
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err = r.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordsRejectsNonObject(t *testing.T) {
	r := NewRecords(filepath.Join(t.TempDir(), "records.json"))
	assert.Error(t, r.Append([]int{1, 2}))
}

func TestRecordsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewRecords(path).All()
	assert.Error(t, err)
}
