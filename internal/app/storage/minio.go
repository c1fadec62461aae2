package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	URLTTL    time.Duration
}

// MinIOClient serves profile avatars out of one bucket.
type MinIOClient struct {
	client     *minio.Client
	bucketName string
	region     string
	urlTTL     time.Duration
}

// NewMinIOClient creates the client without touching the network. With Region
// set, presigning never needs a bucket-location round trip.
func NewMinIOClient(opts Options) (*MinIOClient, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ttl := opts.URLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &MinIOClient{
		client:     client,
		bucketName: opts.Bucket,
		region:     opts.Region,
		urlTTL:     ttl,
	}, nil
}

// EnsureBucket creates the avatar bucket when it does not exist yet.
func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = m.client.MakeBucket(ctx, m.bucketName, minio.MakeBucketOptions{Region: m.region})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	logrus.Infof("Bucket %s created successfully", m.bucketName)
	return nil
}

// AvatarURL returns a time-limited GET URL for the object key.
func (m *MinIOClient) AvatarURL(ctx context.Context, key string) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucketName, key, m.urlTTL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}
