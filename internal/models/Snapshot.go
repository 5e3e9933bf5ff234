package models

// SnapshotVersion is bumped whenever the on-disk layout changes.
const SnapshotVersion = 1

// Snapshot is the full content of an in-memory ledger, used for
// persistence between restarts.
type Snapshot struct {
	Version      int                 `json:"version"`
	Applications []Application       `json:"applications"`
	Metrics      []Metric            `json:"metrics"`
	Certificates []CarbonCertificate `json:"certificates"`
}
