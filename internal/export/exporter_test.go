package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipico/netinv/internal/storage"
)

func testPaths(dir string) Paths {
	return Paths{
		DNSHosts:   filepath.Join(dir, "dns", "hosts.db"),
		DNSReverse: filepath.Join(dir, "dns", "reverse.db"),
		DNSAliases: filepath.Join(dir, "dns", "aliases.db"),
		DHCP4:      filepath.Join(dir, "kea", "hosts4.json"),
		DHCP6:      filepath.Join(dir, "kea", "hosts6.json"),
		Backup:     filepath.Join(dir, "hosts.json"),
	}
}

func mkdirs(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dns"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "kea"), 0o755))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestExporterDNS(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mkdirs(t, dir)
	paths := testPaths(dir)
	e := New(paths, nil)

	hosts := []*storage.Host{{ID: 1, Name: "srv2", IPv4: "10.0.0.3"}}
	aliases := []*storage.Alias{{Name: "www", Target: "srv2"}}

	res, err := e.DNS(context.Background(), hosts, aliases, "lan.example")
	require.NoError(t, err)
	assert.Equal(t, []string{paths.DNSHosts, paths.DNSHosts + ".json", paths.DNSReverse, paths.DNSAliases}, res.Files)

	assert.Equal(t, "srv2\t\t IN\tA\t10.0.0.3\n", readFile(t, paths.DNSHosts))
	assert.Equal(t, "3.0\t\t IN PTR\tsrv2.lan.example\n", readFile(t, paths.DNSReverse))
	assert.Equal(t, "www\t\t IN\tCNAME\tsrv2\n", readFile(t, paths.DNSAliases))
	assert.Contains(t, readFile(t, paths.DNSHosts+".json"), `"name":"srv2"`)
}

func TestExporterCompanionInInsertionOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mkdirs(t, dir)
	paths := testPaths(dir)
	e := New(paths, nil)

	// IPv4 order, as the inventory lists them.
	hosts := []*storage.Host{
		{ID: 3, Name: "c", IPv4: "10.0.0.1"},
		{ID: 1, Name: "a", IPv4: "10.0.0.2"},
		{ID: 2, Name: "b", IPv4: "10.0.0.3"},
	}
	_, err := e.DNS(context.Background(), hosts, nil, "lan.example")
	require.NoError(t, err)
	_, err = e.Backup(context.Background(), hosts)
	require.NoError(t, err)

	assert.Equal(t, "c\t\t IN\tA\t10.0.0.1\na\t\t IN\tA\t10.0.0.2\nb\t\t IN\tA\t10.0.0.3\n", readFile(t, paths.DNSHosts))
	for _, path := range []string{paths.DNSHosts + ".json", paths.Backup} {
		lines := strings.Split(strings.TrimSuffix(readFile(t, path), "\n"), "\n")
		require.Len(t, lines, 3, path)
		assert.Contains(t, lines[0], `"id":1,`, path)
		assert.Contains(t, lines[1], `"id":2,`, path)
		assert.Contains(t, lines[2], `"id":3,`, path)
	}
	assert.Equal(t, int64(3), hosts[0].ID, "input slice is not reordered")
}

func TestExporterDHCPIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mkdirs(t, dir)
	paths := testPaths(dir)
	e := New(paths, nil)
	hosts := []*storage.Host{{Name: "srv1", IPv4: "10.0.0.5", MAC: "AA:BB:CC:DD:EE:FF"}}

	_, err := e.DHCP(context.Background(), hosts)
	require.NoError(t, err)
	first := readFile(t, paths.DHCP4)

	_, err = e.DHCP(context.Background(), hosts)
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, paths.DHCP4))
	assert.Contains(t, first, `"hw-address": "AA:BB:CC:DD:EE:FF"`)

	entries, err := os.ReadDir(filepath.Join(dir, "kea"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestExporterEmptyInventoryIsSuccess(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mkdirs(t, dir)
	paths := testPaths(dir)
	e := New(paths, nil)

	res, err := e.DNS(context.Background(), nil, nil, "lan.example")
	require.NoError(t, err)
	assert.Len(t, res.Files, 4)
	assert.Equal(t, "", readFile(t, paths.DNSHosts))

	_, err = e.DHCP(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"reservations\": []\n}\n", readFile(t, paths.DHCP4))
}

func TestExporterWriteFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := testPaths(dir) // subdirectories deliberately missing
	e := New(paths, nil)

	_, err := e.DHCP(context.Background(), nil)

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr), "got %v", err)
	assert.Equal(t, ArtifactDHCP4, exportErr.Artifact)
	assert.Equal(t, paths.DHCP4, exportErr.Path)
}

func TestExporterSkipsUnconfiguredArtifacts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	e := New(Paths{Backup: filepath.Join(dir, "hosts.json")}, nil)

	res, err := e.DNS(context.Background(), []*storage.Host{{Name: "a", IPv4: "10.0.0.1"}}, nil, "zone")
	require.NoError(t, err)
	assert.Empty(t, res.Files)

	res, err = e.Backup(context.Background(), []*storage.Host{{ID: 1, Name: "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "hosts.json")}, res.Files)
}

func TestExporterCanceledContext(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mkdirs(t, dir)
	paths := testPaths(dir)
	e := New(paths, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.DHCP(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(paths.DHCP4)
	assert.True(t, os.IsNotExist(statErr), "nothing written after cancellation")
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o644))

	assert.Equal(t, "two", readFile(t, path))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}
