// Package submission orchestrates an incapacity claim submission: persist
// the uploads, reconcile against the required documents, append the durable
// record, then mirror to the configured cloud services.
package submission

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/internal/mirror"
	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
	"github.com/jmtrujillo/incapacidades-backend/internal/rules"
	"github.com/jmtrujillo/incapacidades-backend/internal/storage"
)

// timestampLayout names submission folders and ids.
const timestampLayout = "20060102_150405"

// Input is one claim submission as received over HTTP. RequiredDocs is the
// list the claimant's form declared; the server reconciles uploads against
// it.
type Input struct {
	Cedula       string
	UserName     string
	UserCompany  string
	ClaimType    string
	SubType      string
	Days         int
	MotherWorks  string
	Email        string
	Phone        string
	RequiredDocs []string
	Uploads      []storage.Upload
}

// Outcome reports what happened to a submission. Filing is set only when the
// submission was complete.
type Outcome struct {
	ID              string
	Status          string
	SavedDir        string
	SavedFiles      []string
	MissingDocs     []string
	RowIndex        int
	MirrorInserted  bool
	MirrorFileCount int
	Filing          *rules.Filing
}

// Service runs submissions end to end.
type Service struct {
	log           recordlog.Log
	files         *storage.Placement
	connectors    []mirror.Connector
	mirrorTimeout time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

// NewService wires the submission pipeline.
func NewService(
	log recordlog.Log,
	files *storage.Placement,
	connectors []mirror.Connector,
	mirrorTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		log:           log,
		files:         files,
		connectors:    connectors,
		mirrorTimeout: mirrorTimeout,
		now:           time.Now,
		logger:        logger,
	}
}

// Submit processes one claim. Local persistence failures are fatal; mirror
// failures are not. Once local persistence succeeds the submission succeeds.
func (s *Service) Submit(ctx context.Context, in Input) (*Outcome, error) {
	now := s.now()
	timestamp := now.Format(timestampLayout)
	id := fmt.Sprintf("%s-%s", in.Cedula, timestamp)

	relDir := s.files.SubmissionDir(in.UserCompany, in.Cedula, timestamp)
	saved, err := s.files.SaveUploads(relDir, in.Uploads)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploads: %w", err)
	}

	verdict := rules.Reconcile(in.RequiredDocs, saved)

	var filing *rules.Filing
	if verdict.Complete() {
		f := rules.NewFiling(now)
		filing = &f
	}

	rec := recordlog.Record{
		SubmissionID: id,
		Timestamp:    timestamp,
		Cedula:       in.Cedula,
		UserName:     in.UserName,
		UserCompany:  in.UserCompany,
		ClaimType:    in.ClaimType,
		SubType:      in.SubType,
		Days:         in.Days,
		MotherWorks:  in.MotherWorks,
		Email:        in.Email,
		Phone:        in.Phone,
		Status:       verdict.Status,
		MissingDocs:  verdict.Missing,
		Files:        saved,
		SavedDir:     relDir,
	}

	rowIndex, err := s.log.Append(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	s.logger.Info("Submission recorded",
		zap.String("submission_id", id),
		zap.String("status", verdict.Status),
		zap.Int("files", len(saved)),
		zap.Int("row_index", rowIndex))

	inserted, fileCount := s.mirrorAll(ctx, mirror.Job{
		RemoteBase: fmt.Sprintf("%s/%s/%s", in.UserCompany, in.Cedula, timestamp),
		LocalPaths: saved,
		Record:     rec,
	})

	return &Outcome{
		ID:              id,
		Status:          verdict.Status,
		SavedDir:        relDir,
		SavedFiles:      saved,
		MissingDocs:     verdict.Missing,
		RowIndex:        rowIndex,
		MirrorInserted:  inserted,
		MirrorFileCount: fileCount,
		Filing:          filing,
	}, nil
}

// mirrorAll runs every connector under one deadline so a slow cloud service
// cannot stall the response past the configured bound.
func (s *Service) mirrorAll(ctx context.Context, job mirror.Job) (bool, int) {
	if len(s.connectors) == 0 {
		return false, 0
	}

	ctx, cancel := context.WithTimeout(ctx, s.mirrorTimeout)
	defer cancel()

	inserted := false
	fileCount := 0
	for _, c := range s.connectors {
		if !c.Configured() {
			continue
		}
		res := c.Mirror(ctx, job)
		inserted = inserted || res.RowInserted
		fileCount += res.FilesUploaded
	}
	return inserted, fileCount
}
