package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MinimumVersion is the oldest server release the ledger DDL is known to work
// with.
var MinimumVersion = VersionInfo{Major: 21, Minor: 8}

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// VersionInfo represents parsed ClickHouse version information
type VersionInfo struct {
	Major int    // Major version number (e.g., 21)
	Minor int    // Minor version number (e.g., 10)
	Patch int    // Patch version number (e.g., 3)
	Raw   string // Raw version string from ClickHouse
}

// String returns the version as a string in format "major.minor.patch"
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsAtLeast checks if this version is at least the specified version
func (v VersionInfo) IsAtLeast(major, minor int) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// GetVersion retrieves and parses the ClickHouse version from the server
func (c *Client) GetVersion(ctx context.Context) (*VersionInfo, error) {
	var raw string
	if err := c.conn.QueryRow(ctx, "SELECT version()").Scan(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to query ClickHouse version")
	}

	version, err := ParseVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse ClickHouse version: %s", raw)
	}

	return version, nil
}

// ParseVersion parses a ClickHouse version string. Build descriptions and
// release suffixes are ignored.
//
// Examples:
//   - "21.10.3.9" -> 21.10.3
//   - "21.10.3.9-testing" -> 21.10.3
//   - "24.3 (official build)" -> 24.3.0
func ParseVersion(raw string) (*VersionInfo, error) {
	cleaned := strings.TrimSpace(raw)
	if i := strings.IndexAny(cleaned, " -"); i != -1 {
		cleaned = cleaned[:i]
	}

	matches := versionRegex.FindStringSubmatch(cleaned)
	if matches == nil {
		return nil, errors.Errorf("invalid version format: %s", raw)
	}

	parts := make([]int, 3)
	for i, m := range matches[1:4] {
		if m == "" {
			continue
		}

		n, err := strconv.Atoi(m)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid version component %q", m)
		}

		parts[i] = n
	}

	return &VersionInfo{
		Major: parts[0],
		Minor: parts[1],
		Patch: parts[2],
		Raw:   raw,
	}, nil
}
