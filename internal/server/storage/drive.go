package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrDriveNotAuthorized is returned until a refresh token is configured or
// obtained through the consent flow.
var ErrDriveNotAuthorized = errors.New("google drive is not authorized")

// driveAPI is the part of Google Drive the backend talks to.
type driveAPI interface {
	Upload(ctx context.Context, name, folderID string, media io.Reader) (*drive.File, error)
	MakePublic(ctx context.Context, fileID string) error
	Delete(ctx context.Context, fileID string) error
	About(ctx context.Context) (*drive.About, error)
}

type driveService struct {
	svc *drive.Service
}

func (d *driveService) Upload(ctx context.Context, name, folderID string, media io.Reader) (*drive.File, error) {
	f := &drive.File{Name: name}
	if folderID != "" {
		f.Parents = []string{folderID}
	}
	return d.svc.Files.Create(f).
		Media(media).
		Fields("id, name, size, webViewLink, webContentLink").
		Context(ctx).
		Do()
}

func (d *driveService) MakePublic(ctx context.Context, fileID string) error {
	_, err := d.svc.Permissions.Create(fileID, &drive.Permission{Role: "reader", Type: "anyone"}).
		Context(ctx).
		Do()
	return err
}

func (d *driveService) Delete(ctx context.Context, fileID string) error {
	return d.svc.Files.Delete(fileID).Context(ctx).Do()
}

func (d *driveService) About(ctx context.Context) (*drive.About, error) {
	return d.svc.About.Get().Fields("user, storageQuota").Context(ctx).Do()
}

var (
	newDriveAPI = func(ctx context.Context, ts oauth2.TokenSource) (driveAPI, error) {
		svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
		if err != nil {
			return nil, err
		}
		return &driveService{svc: svc}, nil
	}

	oauthExchange = func(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
		return cfg.Exchange(ctx, code)
	}
)

// DriveBackend stores firmware as publicly readable files in Google Drive.
type DriveBackend struct {
	oauth    *oauth2.Config
	folderID string
	logger   logging.Logger

	mu    sync.Mutex
	token *oauth2.Token
	api   driveAPI
}

func NewDriveBackend(cfg *config.Config, l logging.Logger) *DriveBackend {
	b := &DriveBackend{
		oauth: &oauth2.Config{
			ClientID:     cfg.DriveClientID,
			ClientSecret: cfg.DriveClientSecret,
			RedirectURL:  cfg.DriveRedirectURL,
			Scopes:       []string{drive.DriveFileScope},
			Endpoint:     google.Endpoint,
		},
		folderID: cfg.DriveFolderID,
		logger:   l.With("module", "storage_drive"),
	}
	if cfg.DriveRefreshToken != "" {
		b.token = &oauth2.Token{RefreshToken: cfg.DriveRefreshToken}
	}
	return b
}

// AuthURL returns the consent page address for the configured OAuth client.
func (b *DriveBackend) AuthURL(state string) string {
	return b.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for tokens and starts using them.
func (b *DriveBackend) Exchange(ctx context.Context, code string) error {
	tok, err := oauthExchange(ctx, b.oauth, code)
	if err != nil {
		return fmt.Errorf("oauth exchange: %w", err)
	}
	b.mu.Lock()
	b.token = tok
	b.api = nil
	b.mu.Unlock()
	b.logger.Info(ctx, "drive authorized")
	return nil
}

func (b *DriveBackend) client(ctx context.Context) (driveAPI, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.api != nil {
		return b.api, nil
	}
	if b.token == nil {
		return nil, ErrDriveNotAuthorized
	}
	// the token source outlives this request
	api, err := newDriveAPI(context.WithoutCancel(ctx), b.oauth.TokenSource(context.WithoutCancel(ctx), b.token))
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	b.api = api
	return api, nil
}

func (b *DriveBackend) Put(ctx context.Context, obj Object) (models.StorageLocator, error) {
	api, err := b.client(ctx)
	if err != nil {
		return models.StorageLocator{}, err
	}

	f, err := api.Upload(ctx, obj.Name, b.folderID, bytes.NewReader(obj.Data))
	if err != nil {
		return models.StorageLocator{}, fmt.Errorf("upload: %w", err)
	}

	if err := api.MakePublic(ctx, f.Id); err != nil {
		if derr := api.Delete(ctx, f.Id); derr != nil {
			b.logger.Error(ctx, "orphaned drive file", "file_id", f.Id, "error", derr)
		}
		return models.StorageLocator{}, fmt.Errorf("share: %w", err)
	}

	b.logger.Info(ctx, "file stored", "file_id", f.Id, "name", obj.Name)
	return models.StorageLocator{
		DriveFileID:       f.Id,
		DriveViewLink:     f.WebViewLink,
		DriveDownloadLink: f.WebContentLink,
	}, nil
}

func (b *DriveBackend) Remove(ctx context.Context, loc models.StorageLocator) error {
	api, err := b.client(ctx)
	if err != nil {
		return err
	}
	if err := api.Delete(ctx, loc.DriveFileID); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (b *DriveBackend) Status(ctx context.Context) BackendStatus {
	st := BackendStatus{Provider: config.ProviderDrive, Configured: b.oauth.ClientID != ""}

	api, err := b.client(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	about, err := api.About(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}

	st.Connected = true
	if about.User != nil {
		st.Detail = about.User.EmailAddress
	}
	if q := about.StorageQuota; q != nil {
		st.Detail = fmt.Sprintf("%s (%d of %d bytes used)", st.Detail, q.Usage, q.Limit)
	}
	return st
}
