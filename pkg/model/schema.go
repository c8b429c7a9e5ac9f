package model

import "time"

// BaseSchemaVersion is the version tag of the initial persisted data model.
// Snapshots written before schema metadata existed restore to this version.
const BaseSchemaVersion uint64 = 1000

type AppliedMigration struct {
	Version     uint64    `json:"version" bson:"version"`
	AppliedAt   time.Time `json:"applied_at" bson:"applied_at"`
	Description string    `json:"description" bson:"description"`
}

type SchemaMetadata struct {
	CurrentVersion    uint64             `json:"current_version" bson:"current_version"`
	AppliedMigrations []AppliedMigration `json:"applied_migrations" bson:"applied_migrations"`
	// TargetVersion is reserved for pinning a ceiling on forward migration.
	// Recorded but not yet enforced.
	TargetVersion *uint64 `json:"target_version,omitempty" bson:"target_version,omitempty"`
}

func NewSchemaMetadata() SchemaMetadata {
	return SchemaMetadata{CurrentVersion: BaseSchemaVersion}
}

// DescriptionOfCurrent returns the recorded description of the current
// version, empty for the base version.
func (m SchemaMetadata) DescriptionOfCurrent() string {
	for _, applied := range m.AppliedMigrations {
		if applied.Version == m.CurrentVersion {
			return applied.Description
		}
	}
	return ""
}
