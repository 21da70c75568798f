package migrator

import (
	"context"
	"slices"
	"time"
)

type (
	// Ledger is the durable record of applied migrations, stored inside the
	// database being migrated.
	//
	// Implementations are backend specific. Entries are append only: once a
	// version has been recorded it is never updated or removed individually.
	Ledger interface {
		// EnsureInitialized creates the ledger storage when it does not exist.
		// Calling it on an initialized ledger is a no-op.
		EnsureInitialized(ctx context.Context) error

		// AppliedVersions returns every recorded revision. A freshly initialized
		// ledger returns an empty set.
		AppliedVersions(ctx context.Context) (*RevisionSet, error)

		// Record appends a revision for a successfully executed migration.
		Record(ctx context.Context, rev *Revision) error

		// Teardown returns the statements that remove the ledger. When purge is
		// set they also remove the whole target database. Backends that cannot
		// purge return an error.
		Teardown(purge bool) ([]string, error)
	}

	// Revision is a single ledger entry.
	Revision struct {
		// Version of the applied migration.
		Version uint64

		// Label of the applied migration, if any.
		Label string

		// Hash is the h1 checksum of the migration when it was applied.
		Hash string

		// AppliedAt is when the ledger entry was written.
		AppliedAt time.Time

		// ExecutionTime is how long the migration's statement took to run.
		ExecutionTime time.Duration
	}

	// RevisionSet is the collection of revisions read from a ledger, indexed
	// by version.
	RevisionSet struct {
		revisions map[uint64]*Revision
	}
)

// NewRevision builds the ledger entry for a migration.
func NewRevision(mig *Migration, executionTime time.Duration) *Revision {
	return &Revision{
		Version:       mig.Version,
		Label:         mig.Label,
		Hash:          mig.Hash,
		AppliedAt:     time.Now().UTC(),
		ExecutionTime: executionTime,
	}
}

// NewRevisionSet indexes revisions by version. When a version appears more
// than once the first entry wins.
func NewRevisionSet(revisions []*Revision) *RevisionSet {
	rs := &RevisionSet{revisions: make(map[uint64]*Revision, len(revisions))}
	for _, rev := range revisions {
		if _, ok := rs.revisions[rev.Version]; !ok {
			rs.revisions[rev.Version] = rev
		}
	}

	return rs
}

// IsApplied reports whether version has been recorded.
func (rs *RevisionSet) IsApplied(version uint64) bool {
	return rs.Get(version) != nil
}

// Get returns the revision for version, or nil.
func (rs *RevisionSet) Get(version uint64) *Revision {
	if rs == nil {
		return nil
	}

	return rs.revisions[version]
}

// IsModified reports whether mig was applied with a different hash than its
// current contents. Revisions recorded without a hash are never reported.
func (rs *RevisionSet) IsModified(mig *Migration) bool {
	rev := rs.Get(mig.Version)
	if rev == nil || rev.Hash == "" {
		return false
	}

	return rev.Hash != mig.Hash
}

// Versions returns the recorded versions in ascending order.
func (rs *RevisionSet) Versions() []uint64 {
	if rs == nil {
		return nil
	}

	versions := make([]uint64, 0, len(rs.revisions))
	for v := range rs.revisions {
		versions = append(versions, v)
	}
	slices.Sort(versions)

	return versions
}

// Revisions returns the recorded revisions in ascending version order.
func (rs *RevisionSet) Revisions() []*Revision {
	versions := rs.Versions()
	revisions := make([]*Revision, len(versions))
	for i, v := range versions {
		revisions[i] = rs.revisions[v]
	}

	return revisions
}

// Len returns the number of recorded versions.
func (rs *RevisionSet) Len() int {
	if rs == nil {
		return 0
	}

	return len(rs.revisions)
}
