package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type fakeDrive struct {
	uploaded  map[string][]byte
	uploadErr error
	shareErr  error
	deleteErr error
	deleted   []string
	folder    string
}

func (f *fakeDrive) Upload(ctx context.Context, name, folderID string, media io.Reader) (*drive.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	b, _ := io.ReadAll(media)
	f.uploaded[name] = b
	f.folder = folderID
	return &drive.File{Id: "file-" + name, WebViewLink: "view/" + name, WebContentLink: "dl/" + name}, nil
}

func (f *fakeDrive) MakePublic(ctx context.Context, fileID string) error { return f.shareErr }

func (f *fakeDrive) Delete(ctx context.Context, fileID string) error {
	f.deleted = append(f.deleted, fileID)
	return f.deleteErr
}

func (f *fakeDrive) About(ctx context.Context) (*drive.About, error) {
	return &drive.About{
		User:         &drive.User{EmailAddress: "fleet@example.com"},
		StorageQuota: &drive.AboutStorageQuota{Usage: 10, Limit: 100},
	}, nil
}

func withFakeDrive(t *testing.T, f *fakeDrive) {
	t.Helper()
	orig := newDriveAPI
	newDriveAPI = func(ctx context.Context, ts oauth2.TokenSource) (driveAPI, error) { return f, nil }
	t.Cleanup(func() { newDriveAPI = orig })
}

func driveConfig(refresh string) *config.Config {
	return &config.Config{
		DriveClientID:     "cid",
		DriveClientSecret: "secret",
		DriveRedirectURL:  "http://localhost/cb",
		DriveRefreshToken: refresh,
		DriveFolderID:     "folder-1",
	}
}

func TestDriveBackend_PutAndRemove(t *testing.T) {
	f := &fakeDrive{uploaded: map[string][]byte{}}
	withFakeDrive(t, f)

	b := NewDriveBackend(driveConfig("rt"), logging.Nop())

	loc, err := b.Put(context.Background(), Object{Name: "fw.hex", Data: []byte("hex")})
	require.NoError(t, err)
	assert.Equal(t, "file-fw.hex", loc.DriveFileID)
	assert.Equal(t, "view/fw.hex", loc.DriveViewLink)
	assert.Equal(t, "dl/fw.hex", loc.DriveDownloadLink)
	assert.Equal(t, []byte("hex"), f.uploaded["fw.hex"])
	assert.Equal(t, "folder-1", f.folder)

	require.NoError(t, b.Remove(context.Background(), loc))
	assert.Equal(t, []string{"file-fw.hex"}, f.deleted)
}

func TestDriveBackend_ShareFailureDeletesUpload(t *testing.T) {
	f := &fakeDrive{uploaded: map[string][]byte{}, shareErr: errors.New("forbidden")}
	withFakeDrive(t, f)

	b := NewDriveBackend(driveConfig("rt"), logging.Nop())
	_, err := b.Put(context.Background(), Object{Name: "fw.bin"})
	require.ErrorContains(t, err, "forbidden")
	assert.Equal(t, []string{"file-fw.bin"}, f.deleted)
}

func TestDriveBackend_RemoveIgnoresMissingFile(t *testing.T) {
	f := &fakeDrive{uploaded: map[string][]byte{}, deleteErr: &googleapi.Error{Code: http.StatusNotFound}}
	withFakeDrive(t, f)

	b := NewDriveBackend(driveConfig("rt"), logging.Nop())
	require.NoError(t, b.Remove(context.Background(), models.StorageLocator{DriveFileID: "gone"}))

	f.deleteErr = &googleapi.Error{Code: http.StatusInternalServerError}
	require.Error(t, b.Remove(context.Background(), models.StorageLocator{DriveFileID: "x"}))
}

func TestDriveBackend_NotAuthorizedUntilExchange(t *testing.T) {
	f := &fakeDrive{uploaded: map[string][]byte{}}
	withFakeDrive(t, f)

	b := NewDriveBackend(driveConfig(""), logging.Nop())

	_, err := b.Put(context.Background(), Object{Name: "fw.bin"})
	require.ErrorIs(t, err, ErrDriveNotAuthorized)

	st := b.Status(context.Background())
	assert.True(t, st.Configured)
	assert.False(t, st.Connected)

	origEx := oauthExchange
	t.Cleanup(func() { oauthExchange = origEx })
	oauthExchange = func(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
		if code != "good" {
			return nil, errors.New("invalid_grant")
		}
		return &oauth2.Token{AccessToken: "at", RefreshToken: "rt"}, nil
	}

	require.Error(t, b.Exchange(context.Background(), "bad"))
	require.NoError(t, b.Exchange(context.Background(), "good"))

	st = b.Status(context.Background())
	assert.True(t, st.Connected)
	assert.Contains(t, st.Detail, "fleet@example.com")
}

func TestDriveBackend_AuthURL(t *testing.T) {
	b := NewDriveBackend(driveConfig(""), logging.Nop())
	u := b.AuthURL("state-1")
	assert.Contains(t, u, "accounts.google.com")
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "state=state-1")
}

func TestDriveService_AgainstHTTPServer(t *testing.T) {
	var permissions, deletes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/about"):
			_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"emailAddress": "fleet@example.com"}})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/permissions"):
			permissions++
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "perm"})
		case r.Method == http.MethodDelete:
			deletes++
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc, err := drive.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/drive/v3/"))
	require.NoError(t, err)
	d := &driveService{svc: svc}

	about, err := d.About(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fleet@example.com", about.User.EmailAddress)

	require.NoError(t, d.MakePublic(context.Background(), "f1"))
	require.NoError(t, d.Delete(context.Background(), "f1"))
	assert.Equal(t, 1, permissions)
	assert.Equal(t, 1, deletes)
}
