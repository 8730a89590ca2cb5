package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/dbx"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/config"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// downloadURLTTL is the SigV4 maximum.
const downloadURLTTL = 7 * 24 * time.Hour

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) s3Presigner {
		return s3.NewPresignClient(c)
	}
)

// ObjectKey builds the bucket key for a firmware image.
func ObjectKey(version, name, id string) string {
	return path.Join("firmware", version, id+"-"+path.Base(name))
}

// S3Backend stores firmware in an S3-compatible bucket and keeps a
// firmware_objects row per object. The row is written in a transaction after
// the upload; if it cannot be written the object is deleted again.
type S3Backend struct {
	client  s3API
	presign s3Presigner
	bucket  string
	db      *sql.DB
	repos   repomanager.RepositoryManager
	logger  logging.Logger
}

// NewS3Backend builds the AWS client from cfg using static credentials and
// a custom base endpoint (MinIO in development).
func NewS3Backend(ctx context.Context, cfg *config.Config, db *sql.DB, repos repomanager.RepositoryManager, l logging.Logger) (*S3Backend, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Backend{
		client:  client,
		presign: newS3PresignClient(client),
		bucket:  cfg.S3Bucket,
		db:      db,
		repos:   repos,
		logger:  l.With("module", "storage_s3"),
	}, nil
}

func (b *S3Backend) Put(ctx context.Context, obj Object) (models.StorageLocator, error) {
	id := uuid.NewString()
	key := ObjectKey(obj.Version, obj.Name, id)

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Data),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			"version":  obj.Version,
			"checksum": obj.Checksum,
		},
	})
	if err != nil {
		return models.StorageLocator{}, fmt.Errorf("put object: %w", err)
	}

	url, err := b.downloadURL(ctx, key)
	if err == nil {
		err = dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return b.repos.Objects(tx).Create(ctx, &models.FirmwareObject{
				ID:         id,
				Version:    obj.Version,
				Filename:   obj.Name,
				StorageKey: key,
				URL:        url,
				Size:       int64(len(obj.Data)),
				Checksum:   obj.Checksum,
				CreatedAt:  time.Now().UTC(),
			})
		})
	}
	if err != nil {
		if derr := b.deleteObject(ctx, key); derr != nil {
			b.logger.Error(ctx, "orphaned object", "key", key, "error", derr)
			return models.StorageLocator{}, fmt.Errorf("record object: %w", errors.Join(err, derr))
		}
		return models.StorageLocator{}, fmt.Errorf("record object: %w", err)
	}

	b.logger.Info(ctx, "object stored", "key", key, "size", len(obj.Data))
	return models.StorageLocator{S3Key: key, S3URL: url, S3RecordID: id}, nil
}

func (b *S3Backend) Remove(ctx context.Context, loc models.StorageLocator) error {
	if err := b.deleteObject(ctx, loc.S3Key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if loc.S3RecordID == "" {
		return nil
	}
	err := b.repos.Objects(b.db).Delete(ctx, loc.S3RecordID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return nil
}

func (b *S3Backend) Status(ctx context.Context) BackendStatus {
	st := BackendStatus{Provider: config.ProviderS3, Configured: true}

	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		st.Error = fmt.Sprintf("bucket %s: %v", b.bucket, err)
		return st
	}
	if err := b.repos.Objects(b.db).Ping(ctx); err != nil {
		st.Error = err.Error()
		return st
	}

	st.Connected = true
	st.Detail = "bucket " + b.bucket
	return st
}

func (b *S3Backend) deleteObject(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (b *S3Backend) downloadURL(ctx context.Context, key string) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(downloadURLTTL))
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return req.URL, nil
}
