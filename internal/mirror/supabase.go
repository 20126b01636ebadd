package mirror

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// SupabaseConfig holds the managed-store mirror settings. URL and Key empty
// disables the connector.
type SupabaseConfig struct {
	URL    string
	Key    string
	Bucket string
	Table  string
}

// SupabaseConnector inserts a denormalized submission row into a remote
// table. File uploads to bucket storage are deferred to the archiver, which
// calls UploadFiles for submissions past the age threshold.
type SupabaseConnector struct {
	cfg    SupabaseConfig
	client *supabase.Client
	logger *zap.Logger
}

// NewSupabaseConnector builds the connector. A client construction failure
// leaves it unconfigured rather than failing startup.
func NewSupabaseConnector(cfg SupabaseConfig, logger *zap.Logger) *SupabaseConnector {
	if cfg.Table == "" {
		cfg.Table = "incapacidades"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "incapacidades"
	}

	c := &SupabaseConnector{cfg: cfg, logger: logger}
	if cfg.URL == "" || cfg.Key == "" {
		return c
	}

	client, err := supabase.NewClient(cfg.URL, cfg.Key, &supabase.ClientOptions{})
	if err != nil {
		logger.Warn("Supabase client unavailable, mirror disabled", zap.Error(err))
		return c
	}
	c.client = client
	return c
}

// Name identifies the connector in logs.
func (c *SupabaseConnector) Name() string { return "supabase" }

// Configured reports whether the client was built.
func (c *SupabaseConnector) Configured() bool { return c.client != nil }

// Mirror inserts the submission row. Insert failures are swallowed.
func (c *SupabaseConnector) Mirror(ctx context.Context, job Job) Result {
	if !c.Configured() {
		return Result{}
	}

	rec := job.Record
	row := map[string]any{
		"submission_id":      rec.SubmissionID,
		"timestamp":          rec.Timestamp,
		"cedula":             rec.Cedula,
		"user_name":          rec.UserName,
		"user_company":       rec.UserCompany,
		"incapacity_type":    rec.ClaimType,
		"sub_type":           rec.SubType,
		"days_of_incapacity": rec.Days,
		"mother_works":       rec.MotherWorks,
		"email":              rec.Email,
		"phone_number":       rec.Phone,
		"status":             rec.Status,
		"missing_documents":  rec.MissingDocs,
		"saved_dir":          rec.SavedDir,
	}

	if _, _, err := c.client.From(c.cfg.Table).Insert(row, false, "", "", "").Execute(); err != nil {
		c.logger.Warn("Supabase insert failed",
			zap.String("submission_id", rec.SubmissionID), zap.Error(err))
		return Result{}
	}

	c.logger.Info("Supabase row mirrored", zap.String("submission_id", rec.SubmissionID))
	return Result{RowInserted: true}
}

// UploadFiles pushes local files into bucket storage under remoteBase,
// falling back to an update when the object already exists. Returns how many
// made it; never an error.
func (c *SupabaseConnector) UploadFiles(ctx context.Context, remoteBase string, paths []string) int {
	if !c.Configured() {
		return 0
	}

	uploaded := 0
	for _, path := range paths {
		if c.uploadOne(remoteBase, path) {
			uploaded++
		}
	}
	return uploaded
}

func (c *SupabaseConnector) uploadOne(remoteBase, path string) bool {
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}
	upsert := true
	opts := storage_go.FileOptions{ContentType: &contentType, Upsert: &upsert}
	remotePath := remoteBase + "/" + filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		c.logger.Warn("Cannot open file for bucket upload",
			zap.String("path", path), zap.Error(err))
		return false
	}
	defer f.Close()

	if _, err := c.client.Storage.UploadFile(c.cfg.Bucket, remotePath, f, opts); err == nil {
		return true
	}

	// Object may already exist; try replacing it.
	g, err := os.Open(path)
	if err != nil {
		return false
	}
	defer g.Close()

	if _, err := c.client.Storage.UpdateFile(c.cfg.Bucket, remotePath, g, opts); err != nil {
		c.logger.Warn("Bucket upload failed",
			zap.String("remote_path", remotePath), zap.Error(err))
		return false
	}
	return true
}
