package migrations

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("001_init.sql"))
	assert.Equal(t, "002", VersionOf("/srv/migrations/002_add_profile_fields.sql"))
}

func TestDiscoverSortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":         {Data: []byte("SELECT 1;")},
		"001_a.sql":         {Data: []byte("SELECT 1;")},
		"README.md":         {Data: []byte("docs")},
		"003_dir.sql/x.sql": {Data: []byte("SELECT 1;")},
		"nested/004_c.sql":  {Data: []byte("SELECT 1;")},
	}

	found, err := Discover(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{{Version: "001", File: "001_a.sql"}, {Version: "002", File: "002_b.sql"}}, found)
}

func TestDiscoverRejectsDuplicateVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 2;")},
	}

	_, err := Discover(fsys)
	assert.ErrorContains(t, err, "share version 001")
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(os.DirFS(filepath.Join(t.TempDir(), "nope")))
	assert.Error(t, err)
}
