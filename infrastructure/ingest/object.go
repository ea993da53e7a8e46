package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/domain/pipeline"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound indicates the source object does not exist.
var ErrObjectNotFound = errors.New("ingest: object not found")

// ObjectStoreConfig holds the connection settings of a MinIO or S3-compatible
// object store.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// NewObjectClient creates a MinIO client from cfg.
func NewObjectClient(cfg ObjectStoreConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("object store endpoint is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return client, nil
}

// ObjectSource loads a dataset from an object in a MinIO or S3 bucket.
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
	opts   decodeOptions
}

// NewObjectSource creates an ObjectSource for bucket/key. Format and
// compression are detected from the key unless set by options.
func NewObjectSource(client *minio.Client, bucket, key string, opts ...Option) *ObjectSource {
	return &ObjectSource{
		client: client,
		bucket: bucket,
		key:    key,
		opts:   newDecodeOptions(opts),
	}
}

// Ingest downloads and decodes the whole object.
func (s *ObjectSource) Ingest(ctx context.Context) (dataset.Dataset, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return dataset.Dataset{}, s.wrap(err)
	}
	defer func() { _ = obj.Close() }()

	data, err := s.opts.read(obj, s.key)
	if err != nil {
		return dataset.Dataset{}, s.wrap(err)
	}
	return data, nil
}

func (s *ObjectSource) wrap(err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			err = errors.Join(ErrObjectNotFound, err)
		}
	}
	return fmt.Errorf("load s3://%s/%s: %w", s.bucket, s.key, err)
}

var _ pipeline.Ingester = (*ObjectSource)(nil)
