package simlob

const (
	// CoreVersion identifies the schema of the snapshot format this build
	// of the simulation core produces.
	CoreVersion = "v1.0.0"

	// SnapshotSchemaVersion is incremented whenever the on-disk snapshot
	// layout changes in a backward-incompatible way.
	SnapshotSchemaVersion = 1

	// DefaultTickSize and DefaultLotSize apply to any Asset whose
	// configuration leaves them unset.
	DefaultTickSize = "0.0001"
	DefaultLotSize  = "1"
)
