package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/internal/archive"
	"github.com/jmtrujillo/incapacidades-backend/internal/directory"
	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
	"github.com/jmtrujillo/incapacidades-backend/internal/rules"
	"github.com/jmtrujillo/incapacidades-backend/internal/storage"
	"github.com/jmtrujillo/incapacidades-backend/internal/submission"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers.
type Handlers struct {
	lookup          *directory.Lookup
	service         *submission.Service
	log             recordlog.Log
	files           *storage.Placement
	archiver        *archive.Archiver
	devToken        string
	archiveDaysBase int
	logger          *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	lookup *directory.Lookup,
	service *submission.Service,
	log recordlog.Log,
	files *storage.Placement,
	archiver *archive.Archiver,
	devToken string,
	archiveDaysBase int,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		lookup:          lookup,
		service:         service,
		log:             log,
		files:           files,
		archiver:        archiver,
		devToken:        devToken,
		archiveDaysBase: archiveDaysBase,
		logger:          logger,
	}
}

// EmployeeResponse is the employee lookup payload. Source tells which tier
// answered: seed or history.
type EmployeeResponse struct {
	Found   bool   `json:"found"`
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Source  string `json:"source,omitempty"`
}

// FilingResponse is the filing record attached to complete submissions.
type FilingResponse struct {
	ID      string `json:"id"`
	FiledAt string `json:"filedAt"`
}

// SubmitResponse reports a processed submission.
type SubmitResponse struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	SavedDir         string          `json:"savedDir"`
	SavedFiles       []string        `json:"savedFiles"`
	MissingDocuments []string        `json:"missingDocuments"`
	RowIndex         int             `json:"rowIndex"`
	MirrorInserted   bool            `json:"mirrorInserted"`
	MirrorFileCount  int             `json:"mirrorFileCount"`
	Radicado         *FilingResponse `json:"radicado,omitempty"`
}

// SubmissionListItem is one row of the developer listing.
type SubmissionListItem struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Cedula      string `json:"cedula"`
	UserName    string `json:"userName"`
	UserCompany string `json:"userCompany"`
	Status      string `json:"status"`
	SavedDir    string `json:"savedDir"`
}

// Health handles GET /api/health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetEmployee handles GET /api/employees/:cedula.
func (h *Handlers) GetEmployee(c *gin.Context) {
	cedula := c.Param("cedula")

	employee, tier, ok := h.lookup.Find(cedula)
	if !ok {
		c.JSON(http.StatusOK, EmployeeResponse{Found: false})
		return
	}

	c.JSON(http.StatusOK, EmployeeResponse{
		Found:   true,
		Name:    employee.Name,
		Company: employee.Company,
		Source:  string(tier),
	})
}

// GetRequirements handles GET /api/requirements.
func (h *Handlers) GetRequirements(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	docs := rules.RequiredDocs(rules.Input{
		ClaimType:    c.Query("type"),
		SubType:      c.Query("subType"),
		Days:         days,
		MotherWorks:  c.Query("motherWorks"),
		GhostVehicle: c.Query("ghostVehicle"),
	})

	c.JSON(http.StatusOK, gin.H{"requiredDocs": docs})
}

// Submit handles POST /api/submit (multipart).
func (h *Handlers) Submit(c *gin.Context) {
	var required []string
	// A nil slice after a successful unmarshal means the payload was "null",
	// which is not an array.
	if err := json.Unmarshal([]byte(c.PostForm("requiredDocs")), &required); err != nil || required == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requiredDocs must be a valid JSON array"})
		return
	}

	days, _ := strconv.Atoi(c.PostForm("daysOfIncapacity"))

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	var uploads []storage.Upload
	for _, header := range form.File["files"] {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cannot read upload %q", header.Filename)})
			return
		}
		defer f.Close()
		uploads = append(uploads, storage.Upload{Name: header.Filename, Content: f})
	}

	out, err := h.service.Submit(c.Request.Context(), submission.Input{
		Cedula:       c.PostForm("cedula"),
		UserName:     c.PostForm("userName"),
		UserCompany:  c.PostForm("userCompany"),
		ClaimType:    c.PostForm("incapacityType"),
		SubType:      c.PostForm("subType"),
		Days:         days,
		MotherWorks:  c.PostForm("motherWorks"),
		Email:        c.PostForm("email"),
		Phone:        c.PostForm("phoneNumber"),
		RequiredDocs: required,
		Uploads:      uploads,
	})
	if err != nil {
		h.logger.Error("Submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process submission"})
		return
	}

	resp := SubmitResponse{
		ID:               out.ID,
		Status:           out.Status,
		SavedDir:         out.SavedDir,
		SavedFiles:       out.SavedFiles,
		MissingDocuments: out.MissingDocs,
		RowIndex:         out.RowIndex,
		MirrorInserted:   out.MirrorInserted,
		MirrorFileCount:  out.MirrorFileCount,
	}
	if out.Filing != nil {
		resp.Radicado = &FilingResponse{
			ID:      out.Filing.ID,
			FiledAt: out.Filing.FiledAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// devGuard gates developer endpoints behind the shared secret. No secret
// configured means the gate is open.
func (h *Handlers) devGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.devToken != "" && c.GetHeader("X-Dev-Token") != h.devToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid developer token"})
			return
		}
		c.Next()
	}
}

// ExportExcel handles GET /api/dev/exports/excel.
func (h *Handlers) ExportExcel(c *gin.Context) {
	records, err := h.log.ReadAll()
	if err != nil {
		h.logger.Error("Failed to read submissions for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read submissions"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no submissions recorded yet"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename=incapacidades.xlsx`)
	c.Header("Content-Type", xlsxContentType)
	if err := recordlog.WriteXLSX(records, c.Writer); err != nil {
		h.logger.Error("Failed to stream export", zap.Error(err))
	}
}

// ListSubmissions handles GET /api/dev/list.
func (h *Handlers) ListSubmissions(c *gin.Context) {
	records, err := h.log.ReadAll()
	if err != nil {
		h.logger.Error("Failed to list submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read submissions"})
		return
	}

	items := make([]SubmissionListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, SubmissionListItem{
			ID:          rec.SubmissionID,
			Timestamp:   rec.Timestamp,
			Cedula:      rec.Cedula,
			UserName:    rec.UserName,
			UserCompany: rec.UserCompany,
			Status:      rec.Status,
			SavedDir:    rec.SavedDir,
		})
	}
	c.JSON(http.StatusOK, items)
}

// DownloadSubmission handles GET /api/dev/download/:id, streaming the
// submission folder as a zip archive.
func (h *Handlers) DownloadSubmission(c *gin.Context) {
	id := c.Param("id")

	rec, ok, err := h.log.Find(id)
	if err != nil {
		h.logger.Error("Failed to look up submission", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read submissions"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}

	folder := h.files.Resolve(rec.SavedDir)
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission folder not found"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.zip", id))
	c.Header("Content-Type", "application/zip")
	if err := archive.Zip(folder, c.Writer); err != nil {
		h.logger.Error("Failed to stream archive", zap.String("id", id), zap.Error(err))
	}
}

// ArchiveOlder handles POST /api/archive/older.
func (h *Handlers) ArchiveOlder(c *gin.Context) {
	if !h.archiver.Ready() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "managed store mirror is not configured"})
		return
	}

	maxAge := h.archiveDaysBase
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		maxAge = n
	}

	moved, err := h.archiver.ArchiveOlder(c.Request.Context(), maxAge, time.Now())
	if err != nil {
		h.logger.Error("Archive run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"moved": moved, "olderThanDays": maxAge})
}
