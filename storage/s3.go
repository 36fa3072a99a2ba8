package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"learnhub/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3API ist der Teil des S3-Clients, den Bucket benötigt.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Bucket kapselt Upload und Rotation in einem S3-kompatiblen Bucket.
type Bucket struct {
	API     S3API
	Name    string
	BaseURL string
	Logger  *zap.Logger
}

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpunkt.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	}), nil
}

// NewBucket erstellt den Bucket aus der Konfiguration. Ohne S3-Angaben wird nil zurückgegeben.
func NewBucket(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Bucket, error) {
	if !cfg.S3Enabled() {
		return nil, nil
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &Bucket{API: client, Name: cfg.S3Bucket, BaseURL: cfg.S3URL, Logger: logger}, nil
}

// UploadFile lädt Daten hoch und gibt den Link zurück.
func (b *Bucket) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.Name),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.API.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.BaseURL, "/"), b.Name, key), nil
}

// Rotate behält unter prefix die keep neuesten Objekte und löscht den Rest.
// Gibt die gelöschten Keys zurück. Einzelne Löschfehler werden nur geloggt.
func (b *Bucket) Rotate(ctx context.Context, prefix string, keep int) ([]string, error) {
	var objects []types.Object
	paginator := s3.NewListObjectsV2Paginator(b.API, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.Name),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		objects = append(objects, page.Contents...)
	}

	if len(objects) <= keep {
		b.Logger.Debug("Keine Rotation nötig", zap.String("prefix", prefix), zap.Int("objects", len(objects)))
		return nil, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return aws.ToTime(objects[i].LastModified).After(aws.ToTime(objects[j].LastModified))
	})

	var deleted []string
	for _, obj := range objects[keep:] {
		key := aws.ToString(obj.Key)
		b.Logger.Info("Lösche altes Backup", zap.String("key", key))
		_, err := b.API.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.Name),
			Key:    obj.Key,
		})
		if err != nil {
			b.Logger.Warn("Fehler beim Löschen", zap.String("key", key), zap.Error(err))
			continue
		}
		deleted = append(deleted, key)
	}
	return deleted, nil
}
