package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveStore mirrors saved reports into a MinIO bucket. It is optional and
// best-effort; the filesystem tree stays the source of truth.
type ArchiveStore struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewArchiveStore connects to MinIO and ensures the bucket exists.
func NewArchiveStore(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*ArchiveStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &ArchiveStore{client: cli, bucketName: bucket, region: region}, nil
}

// Archive uploads one report under <brandFolder>/<fileName> and returns the
// object URL.
func (s *ArchiveStore) Archive(ctx context.Context, brandFolder, fileName, content string) (string, error) {
	key := brandFolder + "/" + fileName
	r := strings.NewReader(content)
	_, err := s.client.PutObject(ctx, s.bucketName, key, r, int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("http://%s/%s/%s", s.client.EndpointURL().Host, s.bucketName, key)
	return url, nil
}
