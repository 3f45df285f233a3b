package filestore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// storeMarker is the object that marks a prefix as a docsync store.
const storeMarker = ".docsync-store"

var ErrNoBucket = errors.New("filestore: s3 bucket missing")

// S3Config holds the connection settings for S3Backend.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // set for S3 compatible services (minio, R2)
	AccessKey string // empty uses the default credential chain
	SecretKey string
}

type s3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Backend mirrors documents into a bucket. A store is the key prefix
// "<label>/"; each document is one object named by its identifier. Uploads
// complete synchronously and queries are not supported.
type S3Backend struct {
	client s3API
	bucket string
}

// NewS3Backend builds an S3 client from cfg.
func NewS3Backend(ctx context.Context, cfg *S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	opts := []func(*config.LoadOptions) error{
		config.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}),
	}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Backend(client, cfg.Bucket), nil
}

func newS3Backend(client s3API, bucket string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket}
}

func storePrefix(label string) string {
	return strings.Trim(label, "/") + "/"
}

func (b *S3Backend) FindStore(ctx context.Context, label string) (*Store, error) {
	prefix := storePrefix(label)
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  &b.bucket,
		Prefix:  aws.String(prefix + storeMarker),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Contents) == 0 {
		return nil, nil
	}
	return &Store{Name: prefix, DisplayName: label}, nil
}

func (b *S3Backend) CreateStore(ctx context.Context, label string) (*Store, error) {
	prefix := storePrefix(label)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &b.bucket,
		Key:           aws.String(prefix + storeMarker),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return nil, err
	}
	return &Store{Name: prefix, DisplayName: label}, nil
}

func (b *S3Backend) DeleteStore(ctx context.Context, store *Store) error {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: &b.bucket,
		Prefix: aws.String(store.Name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	for _, key := range keys {
		if err := b.DeleteDocument(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (b *S3Backend) ListDocuments(ctx context.Context, store *Store) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
			Bucket: &b.bucket,
			Prefix: aws.String(store.Name),
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(Document{}, err)
				return
			}

			for _, obj := range page.Contents {
				key := aws.ToString(obj.Key)
				name := strings.TrimPrefix(key, store.Name)
				// nested keys were not written by docsync
				if name == storeMarker || name == "" || strings.Contains(name, "/") {
					continue
				}

				doc := Document{
					ID:          key,
					DisplayName: name,
					SizeBytes:   aws.ToInt64(obj.Size),
					State:       "STATE_ACTIVE",
				}
				if obj.LastModified != nil {
					doc.UpdateTime = *obj.LastModified
				}
				if !yield(doc, nil) {
					return
				}
			}
		}
	}
}

func (b *S3Backend) UploadDocument(ctx context.Context, store *Store, req UploadRequest) (*Operation, error) {
	file, err := os.Open(req.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	key := store.Name + req.DisplayName
	input := &s3.PutObjectInput{
		Bucket:        &b.bucket,
		Key:           &key,
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
	}
	if req.MimeType != "" {
		input.ContentType = aws.String(req.MimeType)
	}
	if req.Hash != "" {
		input.Metadata = map[string]string{MetaSHA256: req.Hash}
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return nil, err
	}
	return &Operation{Name: key, Done: true}, nil
}

// GetOperation returns op unchanged; S3 writes are complete when PutObject returns.
func (b *S3Backend) GetOperation(_ context.Context, op *Operation) (*Operation, error) {
	return &Operation{Name: op.Name, Done: true, Err: op.Err}, nil
}

func (b *S3Backend) DeleteDocument(ctx context.Context, id string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &b.bucket,
		Key:    &id,
	})
	return err
}

func (b *S3Backend) Query(context.Context, *Store, string) (*Answer, error) {
	return nil, ErrQueryUnsupported
}
