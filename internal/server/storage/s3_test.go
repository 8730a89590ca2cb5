package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []string
	putErr  error
	delErr  error
	headErr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

type fakePresigner struct{ err error }

func (f fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "http://minio/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
}

func newS3Backend(t *testing.T) (*S3Backend, *fakeS3, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	client := &fakeS3{}
	return &S3Backend{
		client:  client,
		presign: fakePresigner{},
		bucket:  "firmware",
		db:      db,
		repos:   repomanager.NewPostgresRepositoryManager(),
		logger:  logging.Nop(),
	}, client, mock
}

func TestS3Backend_Put_RecordsObject(t *testing.T) {
	b, client, mock := newS3Backend(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO firmware_objects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	loc, err := b.Put(context.Background(), Object{Name: "fw.bin", Version: "2.3.0", Checksum: "sha256:aa", Data: []byte("abc")})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, client.puts, 1)
	in := client.puts[0]
	assert.Equal(t, "firmware", aws.ToString(in.Bucket))
	assert.Equal(t, loc.S3Key, aws.ToString(in.Key))
	assert.Equal(t, int64(3), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "application/octet-stream", aws.ToString(in.ContentType))
	assert.Equal(t, "2.3.0", in.Metadata["version"])

	assert.Contains(t, loc.S3Key, "firmware/2.3.0/")
	assert.Equal(t, "http://minio/firmware/"+loc.S3Key, loc.S3URL)
	assert.NotEmpty(t, loc.S3RecordID)
}

func TestS3Backend_Put_DeletesObjectWhenRecordFails(t *testing.T) {
	b, client, mock := newS3Backend(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO firmware_objects").WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := b.Put(context.Background(), Object{Name: "fw.bin", Version: "2.3.0", Data: []byte("abc")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	require.Len(t, client.deletes, 1)
	assert.Equal(t, aws.ToString(client.puts[0].Key), client.deletes[0])
}

func TestS3Backend_Put_DeletesObjectWhenPresignFails(t *testing.T) {
	b, client, _ := newS3Backend(t)
	b.presign = fakePresigner{err: errors.New("no creds")}

	_, err := b.Put(context.Background(), Object{Name: "fw.bin", Version: "1.0.0", Data: []byte("x")})
	require.Error(t, err)
	assert.Len(t, client.deletes, 1)
}

func TestS3Backend_Put_UploadError(t *testing.T) {
	b, client, _ := newS3Backend(t)
	client.putErr = errBoom{}

	_, err := b.Put(context.Background(), Object{Name: "fw.bin", Version: "1.0.0"})
	require.Error(t, err)
	assert.Empty(t, client.deletes)
}

func TestS3Backend_Remove(t *testing.T) {
	b, client, mock := newS3Backend(t)

	mock.ExpectExec("DELETE FROM firmware_objects").WithArgs("rec-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, b.Remove(context.Background(), models.StorageLocator{S3Key: "k1", S3RecordID: "rec-1"}))

	// a missing record is not an error; the object is gone either way
	mock.ExpectExec("DELETE FROM firmware_objects").WithArgs("rec-2").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, b.Remove(context.Background(), models.StorageLocator{S3Key: "k2", S3RecordID: "rec-2"}))

	assert.Equal(t, []string{"k1", "k2"}, client.deletes)

	client.delErr = errBoom{}
	require.Error(t, b.Remove(context.Background(), models.StorageLocator{S3Key: "k3"}))
}

func TestS3Backend_Status(t *testing.T) {
	b, client, mock := newS3Backend(t)

	mock.ExpectQuery("SELECT 1 FROM firmware_objects").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
	st := b.Status(context.Background())
	assert.True(t, st.Connected)
	assert.Equal(t, config.ProviderS3, st.Provider)

	client.headErr = errors.New("NoSuchBucket")
	st = b.Status(context.Background())
	assert.False(t, st.Connected)
	assert.Contains(t, st.Error, "NoSuchBucket")
}

func TestNewS3Backend_UsesSeams(t *testing.T) {
	origLoad, origNew, origPresign := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNew, origPresign
	})

	var gotEndpoint string
	var pathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		o := s3.Options{}
		for _, fn := range optFns {
			fn(&o)
		}
		gotEndpoint = aws.ToString(o.BaseEndpoint)
		pathStyle = o.UsePathStyle
		return s3.New(o)
	}

	cfg := &config.Config{S3Region: "us-east-1", S3RootUser: "u", S3RootPassword: "p", S3BaseEndpoint: "http://minio:9000", S3Bucket: "fw"}
	b, err := NewS3Backend(context.Background(), cfg, (*sql.DB)(nil), repomanager.NewPostgresRepositoryManager(), logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", gotEndpoint)
	assert.True(t, pathStyle)
	assert.Equal(t, "fw", b.bucket)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("cfg boom")
	}
	_, err = NewS3Backend(context.Background(), cfg, nil, repomanager.NewPostgresRepositoryManager(), logging.Nop())
	require.ErrorContains(t, err, "cfg boom")
}
