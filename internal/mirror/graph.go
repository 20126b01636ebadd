package mirror

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Default Microsoft endpoints. Tests point these at a local server.
const (
	defaultAuthorityBase = "https://login.microsoftonline.com"
	defaultGraphBase     = "https://graph.microsoft.com/v1.0"
)

// GraphConfig holds the OneDrive (Microsoft Graph) mirror settings. Leaving
// the credentials empty disables the connector.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	DriveID      string // "me" or empty targets the signed-in drive
	BasePath     string // remote folder under the drive root

	AuthorityBase string
	GraphBase     string
}

// GraphConnector streams saved files to OneDrive via the Graph content API.
type GraphConnector struct {
	cfg    GraphConfig
	creds  clientcredentials.Config
	client *http.Client
	logger *zap.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// NewGraphConnector builds the connector. Tokens are cached across uploads
// and refreshed lazily.
func NewGraphConnector(cfg GraphConfig, logger *zap.Logger) *GraphConnector {
	if cfg.AuthorityBase == "" {
		cfg.AuthorityBase = defaultAuthorityBase
	}
	if cfg.GraphBase == "" {
		cfg.GraphBase = defaultGraphBase
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/IncapacidadesUploads"
	}

	return &GraphConnector{
		cfg: cfg,
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", cfg.AuthorityBase, cfg.TenantID),
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		},
		client: &http.Client{},
		logger: logger,
	}
}

// Name identifies the connector in logs.
func (c *GraphConnector) Name() string { return "onedrive" }

// Configured reports whether credentials are present.
func (c *GraphConnector) Configured() bool {
	return c.cfg.TenantID != "" && c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// Mirror uploads each local file under RemoteBase. Failures are logged and
// swallowed; the count reflects whatever made it through.
func (c *GraphConnector) Mirror(ctx context.Context, job Job) Result {
	if !c.Configured() {
		return Result{}
	}

	tok, err := c.tokenFor(ctx)
	if err != nil {
		c.logger.Warn("OneDrive token exchange failed", zap.Error(err))
		return Result{}
	}

	uploaded := 0
	for _, path := range job.LocalPaths {
		if err := c.uploadFile(ctx, tok, job.RemoteBase, path); err != nil {
			c.logger.Warn("OneDrive upload failed",
				zap.String("path", path), zap.Error(err))
			continue
		}
		uploaded++
	}

	c.logger.Info("OneDrive mirror finished",
		zap.String("remote_base", job.RemoteBase),
		zap.Int("uploaded", uploaded),
		zap.Int("total", len(job.LocalPaths)))
	return Result{FilesUploaded: uploaded}
}

// tokenFor returns the cached access token, exchanging credentials under the
// caller's deadline when none is held or the held one expired. The deadline
// matters: token exchange happens inside the submission's mirror window, so a
// stuck identity endpoint must not outlive it.
func (c *GraphConnector) tokenFor(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token, nil
	}
	tok, err := c.creds.TokenSource(ctx).Token()
	if err != nil {
		return nil, err
	}
	c.token = tok
	return tok, nil
}

func (c *GraphConnector) uploadFile(ctx context.Context, tok *oauth2.Token, remoteBase, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer f.Close()

	remotePath := fmt.Sprintf("%s/%s/%s", c.cfg.BasePath, remoteBase, filepath.Base(path))
	var url string
	if c.cfg.DriveID == "" || c.cfg.DriveID == "me" {
		url = fmt.Sprintf("%s/me/drive/root:%s:/content", c.cfg.GraphBase, remotePath)
	} else {
		url = fmt.Sprintf("%s/drives/%s/root:%s:/content", c.cfg.GraphBase, c.cfg.DriveID, remotePath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, f)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	tok.SetAuthHeader(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}
	return nil
}
