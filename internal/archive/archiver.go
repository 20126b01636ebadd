package archive

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
)

// timestampLayout matches the submission folder timestamps.
const timestampLayout = "20060102_150405"

// BucketUploader pushes local files to remote bucket storage. The Supabase
// connector satisfies this.
type BucketUploader interface {
	Configured() bool
	UploadFiles(ctx context.Context, remoteBase string, paths []string) int
}

// Archiver moves the files of aged submissions into bucket storage. Local
// files stay in place; the bucket copy is the long-term home for old
// supporting documents.
type Archiver struct {
	log         recordlog.Log
	uploader    BucketUploader
	storageRoot string
	logger      *zap.Logger
}

// NewArchiver builds an archiver over the submission log and storage root.
func NewArchiver(log recordlog.Log, uploader BucketUploader, storageRoot string, logger *zap.Logger) *Archiver {
	return &Archiver{
		log:         log,
		uploader:    uploader,
		storageRoot: storageRoot,
		logger:      logger,
	}
}

// Ready reports whether the bucket side is configured.
func (a *Archiver) Ready() bool { return a.uploader.Configured() }

// ArchiveOlder uploads the folders of submissions older than maxAgeDays.
// Rows with unparseable timestamps or missing folders are skipped. Returns
// the number of files moved.
func (a *Archiver) ArchiveOlder(ctx context.Context, maxAgeDays int, now time.Time) (int, error) {
	records, err := a.log.ReadAll()
	if err != nil {
		return 0, err
	}

	maxAge := time.Duration(maxAgeDays) * 24 * time.Hour
	moved := 0
	for _, rec := range records {
		ts, err := time.ParseInLocation(timestampLayout, rec.Timestamp, time.Local)
		if err != nil {
			continue
		}
		if now.Sub(ts) < maxAge {
			continue
		}

		folder := filepath.Join(a.storageRoot, rec.SavedDir)
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			continue
		}

		files, err := listFiles(folder)
		if err != nil {
			a.logger.Warn("Cannot list submission folder",
				zap.String("folder", folder), zap.Error(err))
			continue
		}

		count := a.uploader.UploadFiles(ctx, filepath.ToSlash(rec.SavedDir), files)
		if count > 0 {
			moved += count
			a.logger.Info("Submission archived",
				zap.String("submission_id", rec.SubmissionID),
				zap.Int("files", count))
		}
	}

	return moved, nil
}
