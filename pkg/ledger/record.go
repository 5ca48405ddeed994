package ledger

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Status is the lifecycle state of a ledger row.
type Status string

const (
	Ready      Status = "READY"
	Applied    Status = "APPLIED"
	Tested     Status = "TESTED"
	RolledBack Status = "ROLLED_BACK"
	Disabled   Status = "DISABLED"
	Locked     Status = "LOCKED"
)

const (
	// Absent marks a missing name on either side of a record.
	Absent = "-1"

	// LockVersion, LockName and LockChecksum identify the sentinel row.
	LockVersion  int64 = 0
	LockName           = "LOCK"
	LockChecksum       = "LOCK"

	// Schema is the database or schema holding the records table on backends
	// that support one.
	Schema = "swellow"
)

// Record is one row of the ledger.
type Record struct {
	VersionID  int64
	ObjectType string
	NameBefore string
	NameAfter  string
	Status     Status
	Checksum   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPlaceholder reports whether the record refers to an object that neither
// existed before nor after its version. Such records are never written.
func (r Record) IsPlaceholder() bool {
	return r.NameBefore == Absent && r.NameAfter == Absent
}

// IsLock reports whether the record is the lock sentinel.
func (r Record) IsLock() bool {
	return r.VersionID == LockVersion && r.ObjectType == LockName && r.Status == Locked
}

// Digest is the value stored in the checksum column for a migration checksum.
func Digest(checksum string) string {
	sum := md5.Sum([]byte(checksum))
	return hex.EncodeToString(sum[:])
}
