package migrator

import (
	"crypto/sha256"
	"encoding/base64"
	"io/fs"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/ssm/pkg/consts"
)

type (
	// Migration is a single versioned script loaded from a migration directory.
	//
	// Migrations are immutable once loaded. The file contents are read eagerly
	// so that a later change on disk cannot alter what gets executed.
	Migration struct {
		// Version is the numeric version parsed from the leading digits of the
		// filename. It defines the application order.
		Version uint64

		// Label is the optional text following the first underscore, without the
		// extension. It is descriptive only.
		Label string

		// Filename is the base name of the file the migration was loaded from.
		Filename string

		// Statement is the raw script, passed to the database as is.
		Statement string

		// Hash is the h1 checksum of Statement. It is recorded in the ledger so
		// files edited after being applied can be reported.
		Hash string
	}

	// MigrationDir is the ordered set of migrations found in a directory.
	MigrationDir struct {
		// Migrations are sorted in strictly ascending version order.
		Migrations []*Migration

		// Ext is the extension that was used to select migration files.
		Ext string
	}
)

// MaxVersion is the largest version a migration may use. Ledgers store
// versions in signed 64-bit columns.
const MaxVersion uint64 = math.MaxInt64

var labelCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// LoadMigrationDirPath loads the migration directory at path from the local
// filesystem.
//
// Returns an error wrapping ErrDirectoryNotFound when path does not exist or is
// not a directory.
func LoadMigrationDirPath(path, ext string) (*MigrationDir, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrDirectoryNotFound, "%s", path)
		}

		return nil, errors.Wrapf(err, "failed to stat migration directory: %s", path)
	}

	if !info.IsDir() {
		return nil, errors.Wrapf(ErrDirectoryNotFound, "%s is not a directory", path)
	}

	dir, err := LoadMigrationDir(os.DirFS(path), ext)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load migrations from %s", path)
	}

	return dir, nil
}

// LoadMigrationDir loads every migration at the top level of fsys whose name
// ends with ext. Subdirectories are not searched.
//
// Entries are handled as follows:
//   - directories, hidden files and files without ext are ignored
//   - files that do not start with a digit (README.surql) are ignored
//   - files that start with a digit but do not match <version>[_<label>]<ext>
//     (01a.surql, 1-init.surql) fail with ErrMalformedVersion
//   - two files with the same numeric version fail with ErrDuplicateVersion
//
// An empty ext selects consts.SurrealExt, and a missing leading dot is added.
//
// Example usage:
//
//	//go:embed migrations/*.surql
//	var migrationsFS embed.FS
//
//	sub, _ := fs.Sub(migrationsFS, "migrations")
//	dir, err := migrator.LoadMigrationDir(sub, ".surql")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, mig := range dir.Migrations {
//		fmt.Printf("%d %s\n", mig.Version, mig.Filename)
//	}
func LoadMigrationDir(fsys fs.FS, ext string) (*MigrationDir, error) {
	ext = NormalizeExt(ext)
	pattern := regexp.MustCompile(`^(\d+)(?:_([^.]*))?` + regexp.QuoteMeta(ext) + `$`)

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(ErrDirectoryNotFound, err.Error())
		}

		return nil, errors.Wrap(err, "failed to read migration directory")
	}

	dir := &MigrationDir{Ext: ext}
	seen := make(map[uint64]string, len(entries))

	// NB: ReadDir returns entries sorted by filename, so duplicate errors are stable.
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}

		if name[0] < '0' || name[0] > '9' {
			continue
		}

		m := pattern.FindStringSubmatch(name)
		if m == nil {
			return nil, errors.Wrapf(ErrMalformedVersion, "%s does not match <version>[_<label>]%s", name, ext)
		}

		version, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil || version > MaxVersion {
			return nil, errors.Wrapf(ErrMalformedVersion, "%s: version %s is out of range", name, m[1])
		}

		if other, ok := seen[version]; ok {
			return nil, errors.Wrapf(ErrDuplicateVersion, "version %d is used by %s and %s", version, other, name)
		}
		seen[version] = name

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read migration: %s", name)
		}

		dir.Migrations = append(dir.Migrations, &Migration{
			Version:   version,
			Label:     m[2],
			Filename:  name,
			Statement: string(content),
			Hash:      HashContents(content),
		})
	}

	slices.SortFunc(dir.Migrations, func(a, b *Migration) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		default:
			return 0
		}
	})

	return dir, nil
}

// Pending returns the migrations whose versions are not in applied, in
// ascending order. A nil applied set means nothing has been applied.
func (d *MigrationDir) Pending(applied *RevisionSet) []*Migration {
	var pending []*Migration
	for _, mig := range d.Migrations {
		if !applied.IsApplied(mig.Version) {
			pending = append(pending, mig)
		}
	}

	return pending
}

// Latest returns the migration with the highest version, or nil when the
// directory is empty.
func (d *MigrationDir) Latest() *Migration {
	if len(d.Migrations) == 0 {
		return nil
	}

	return d.Migrations[len(d.Migrations)-1]
}

// NextVersion returns the version a newly created migration should use.
func (d *MigrationDir) NextVersion() uint64 {
	if latest := d.Latest(); latest != nil {
		return latest.Version + 1
	}

	return 1
}

// VersionWidth returns the number of digits used by the newest migration's
// filename, but never less than consts.MinVersionWidth.
func (d *MigrationDir) VersionWidth() int {
	width := consts.MinVersionWidth
	if latest := d.Latest(); latest != nil {
		digits := len(latest.Filename) - len(strings.TrimLeft(latest.Filename, "0123456789"))
		width = max(width, digits)
	}

	return width
}

// FormatFilename renders the filename for a migration. The version is zero
// padded to width and the label is lowercased with every run of characters
// other than letters and digits replaced by an underscore.
//
// Example:
//
//	migrator.FormatFilename(7, 3, "Add users table", ".surql") // 007_add_users_table.surql
//	migrator.FormatFilename(12, 3, "", ".sql")                 // 012.sql
func FormatFilename(version uint64, width int, label, ext string) string {
	var sb strings.Builder

	v := strconv.FormatUint(version, 10)
	if pad := width - len(v); pad > 0 {
		sb.WriteString(strings.Repeat("0", pad))
	}
	sb.WriteString(v)

	label = strings.Trim(labelCleaner.ReplaceAllString(strings.ToLower(label), "_"), "_")
	if label != "" {
		sb.WriteString("_")
		sb.WriteString(label)
	}

	sb.WriteString(NormalizeExt(ext))
	return sb.String()
}

// NormalizeExt returns ext with a leading dot, or consts.SurrealExt when ext is
// empty.
func NormalizeExt(ext string) string {
	switch {
	case ext == "":
		return consts.SurrealExt
	case !strings.HasPrefix(ext, "."):
		return "." + ext
	default:
		return ext
	}
}

// HashContents returns the h1 checksum of content: "h1:" followed by the
// standard base64 encoding of its SHA256 digest.
func HashContents(content []byte) string {
	sum := sha256.Sum256(content)
	return "h1:" + base64.StdEncoding.EncodeToString(sum[:])
}
