// Package mirror replicates locally persisted submissions to third-party
// services. Mirroring is strictly best-effort: the local record is the source
// of truth and no connector failure ever surfaces to a submission.
package mirror

import (
	"context"

	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
)

// Job is one submission to replicate.
type Job struct {
	// RemoteBase namespaces the submission remotely: company/cedula/timestamp.
	RemoteBase string
	LocalPaths []string
	Record     recordlog.Record
}

// Result reports what a connector managed to replicate. Partial success is
// not distinguished from full success.
type Result struct {
	RowInserted   bool
	FilesUploaded int
}

// Connector pushes submissions to one remote service. An unconfigured
// connector reports Configured false and mirrors as a no-op. Mirror never
// returns an error.
type Connector interface {
	Name() string
	Configured() bool
	Mirror(ctx context.Context, job Job) Result
}
