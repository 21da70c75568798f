package migrator_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/pseudomuto/ssm/pkg/migrator"
	"github.com/stretchr/testify/require"
)

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func TestLoadMigrationDir(t *testing.T) {
	fsys := fstest.MapFS{
		"010_backfill.surql":  file("UPDATE user SET active = true;"),
		"001.surql":           file("DEFINE TABLE user SCHEMAFULL;"),
		"002_add_index.surql": file("DEFINE INDEX user_email ON user FIELDS email UNIQUE;"),
		"abc.surql":           file("skipped"),
		"README.md":           file("# migrations"),
		".003.surql":          file("hidden"),
		"004.sql":             file("wrong extension"),
		"nested/005.surql":    file("not searched"),
		"005.surql.bak":       file("backup"),
	}

	dir, err := migrator.LoadMigrationDir(fsys, ".surql")
	require.NoError(t, err)
	require.Equal(t, ".surql", dir.Ext)
	require.Len(t, dir.Migrations, 3)

	first := dir.Migrations[0]
	require.Equal(t, uint64(1), first.Version)
	require.Empty(t, first.Label)
	require.Equal(t, "001.surql", first.Filename)
	require.Equal(t, "DEFINE TABLE user SCHEMAFULL;", first.Statement)
	require.Equal(t, migrator.HashContents([]byte("DEFINE TABLE user SCHEMAFULL;")), first.Hash)

	require.Equal(t, uint64(2), dir.Migrations[1].Version)
	require.Equal(t, "add_index", dir.Migrations[1].Label)
	require.Equal(t, uint64(10), dir.Migrations[2].Version)
	require.Equal(t, "backfill", dir.Migrations[2].Label)
}

func TestLoadMigrationDir_Sorted(t *testing.T) {
	// Lexical order differs from numeric order here.
	fsys := fstest.MapFS{
		"9.surql":   file("a"),
		"10.surql":  file("b"),
		"100.surql": file("c"),
		"2.surql":   file("d"),
	}

	dir, err := migrator.LoadMigrationDir(fsys, ".surql")
	require.NoError(t, err)

	var versions []uint64
	for _, mig := range dir.Migrations {
		versions = append(versions, mig.Version)
	}
	require.Equal(t, []uint64{2, 9, 10, 100}, versions)
}

func TestLoadMigrationDir_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fsys     fstest.MapFS
		expected error
		contains string
	}{
		{
			name: "duplicate version with leading zeros",
			fsys: fstest.MapFS{
				"001.surql":      file("a"),
				"1_init.surql":   file("b"),
				"002_next.surql": file("c"),
			},
			expected: migrator.ErrDuplicateVersion,
			contains: "version 1 is used by 001.surql and 1_init.surql",
		},
		{
			name:     "letters after digits",
			fsys:     fstest.MapFS{"01a.surql": file("a")},
			expected: migrator.ErrMalformedVersion,
			contains: "01a.surql",
		},
		{
			name:     "dash separator",
			fsys:     fstest.MapFS{"1-init.surql": file("a")},
			expected: migrator.ErrMalformedVersion,
			contains: "1-init.surql",
		},
		{
			name:     "dot in label",
			fsys:     fstest.MapFS{"1_a.b.surql": file("a")},
			expected: migrator.ErrMalformedVersion,
			contains: "1_a.b.surql",
		},
		{
			name:     "version overflow",
			fsys:     fstest.MapFS{"99999999999999999999.surql": file("a")},
			expected: migrator.ErrMalformedVersion,
			contains: "out of range",
		},
		{
			name:     "version beyond signed range",
			fsys:     fstest.MapFS{"9223372036854775808_big.surql": file("a")},
			expected: migrator.ErrMalformedVersion,
			contains: "9223372036854775808 is out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := migrator.LoadMigrationDir(tt.fsys, ".surql")
			require.Nil(t, dir)
			require.ErrorIs(t, err, tt.expected)
			require.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadMigrationDir_MaxVersion(t *testing.T) {
	dir, err := migrator.LoadMigrationDir(fstest.MapFS{"9223372036854775807_last.surql": file("a")}, ".surql")
	require.NoError(t, err)
	require.Len(t, dir.Migrations, 1)
	require.Equal(t, migrator.MaxVersion, dir.Migrations[0].Version)
}

func TestLoadMigrationDir_Extensions(t *testing.T) {
	fsys := fstest.MapFS{
		"001.surql": file("a"),
		"002.sql":   file("b"),
	}

	tests := []struct {
		ext      string
		filename string
	}{
		{ext: "", filename: "001.surql"},
		{ext: "surql", filename: "001.surql"},
		{ext: ".sql", filename: "002.sql"},
		{ext: "sql", filename: "002.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			dir, err := migrator.LoadMigrationDir(fsys, tt.ext)
			require.NoError(t, err)
			require.Len(t, dir.Migrations, 1)
			require.Equal(t, tt.filename, dir.Migrations[0].Filename)
		})
	}
}

func TestLoadMigrationDir_Empty(t *testing.T) {
	dir, err := migrator.LoadMigrationDir(fstest.MapFS{}, ".surql")
	require.NoError(t, err)
	require.Empty(t, dir.Migrations)
	require.Nil(t, dir.Latest())
	require.Equal(t, uint64(1), dir.NextVersion())
	require.Equal(t, 3, dir.VersionWidth())
}

func TestLoadMigrationDirPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "001.surql"), []byte("DEFINE TABLE a;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "002_b.surql"), []byte("DEFINE TABLE b;"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "003_dir.surql"), 0o755))

	dir, err := migrator.LoadMigrationDirPath(root, ".surql")
	require.NoError(t, err)
	require.Len(t, dir.Migrations, 2)
	require.Equal(t, "b", dir.Migrations[1].Label)

	t.Run("missing directory", func(t *testing.T) {
		_, err := migrator.LoadMigrationDirPath(filepath.Join(root, "missing"), ".surql")
		require.ErrorIs(t, err, migrator.ErrDirectoryNotFound)
	})

	t.Run("path is a file", func(t *testing.T) {
		_, err := migrator.LoadMigrationDirPath(filepath.Join(root, "001.surql"), ".surql")
		require.ErrorIs(t, err, migrator.ErrDirectoryNotFound)
	})

	t.Run("malformed file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "4x.surql"), []byte(""), 0o644))
		_, err := migrator.LoadMigrationDirPath(root, ".surql")
		require.ErrorIs(t, err, migrator.ErrMalformedVersion)
		require.Contains(t, err.Error(), root)
	})
}

func TestMigrationDir_Helpers(t *testing.T) {
	dir, err := migrator.LoadMigrationDir(fstest.MapFS{
		"0001_a.surql": file("a"),
		"0002_b.surql": file("b"),
		"0003_c.surql": file("c"),
	}, ".surql")
	require.NoError(t, err)

	require.Equal(t, uint64(3), dir.Latest().Version)
	require.Equal(t, uint64(4), dir.NextVersion())
	require.Equal(t, 4, dir.VersionWidth())

	applied := migrator.NewRevisionSet([]*migrator.Revision{{Version: 1}, {Version: 3}})
	pending := dir.Pending(applied)
	require.Len(t, pending, 1)
	require.Equal(t, uint64(2), pending[0].Version)

	require.Len(t, dir.Pending(nil), 3)
}

func TestFormatFilename(t *testing.T) {
	tests := []struct {
		version  uint64
		width    int
		label    string
		ext      string
		expected string
	}{
		{version: 7, width: 3, label: "Add users table", ext: ".surql", expected: "007_add_users_table.surql"},
		{version: 12, width: 3, label: "", ext: ".sql", expected: "012.sql"},
		{version: 1234, width: 3, label: "big", ext: "surql", expected: "1234_big.surql"},
		{version: 5, width: 6, label: "--Weird!! name--", ext: ".surql", expected: "000005_weird_name.surql"},
		{version: 1, width: 3, label: "___", ext: "", expected: "001.surql"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, migrator.FormatFilename(tt.version, tt.width, tt.label, tt.ext))
		})
	}
}

func TestHashContents(t *testing.T) {
	require.Equal(t, "h1:47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", migrator.HashContents(nil))
	require.NotEqual(t, migrator.HashContents([]byte("a")), migrator.HashContents([]byte("b")))
}
