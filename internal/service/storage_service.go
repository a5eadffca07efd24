// Package service wires the conversion pipeline to its collaborators: the
// LLM provider, the image strategies and object storage.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/jmylchreest/refyne-catalog/internal/config"
)

// ErrStorageDisabled is returned by presigning when no bucket is configured.
var ErrStorageDisabled = errors.New("storage is not enabled")

// StorageService archives converted catalogues in S3-compatible storage.
type StorageService struct {
	client  *s3.Client
	bucket  string
	enabled bool
	logger  *slog.Logger
}

// NewStorageService creates a new storage service.
func NewStorageService(cfg *appconfig.Config, logger *slog.Logger) (*StorageService, error) {
	if !cfg.StorageEnabled {
		logger.Info("storage service disabled - no bucket configured")
		return &StorageService{
			enabled: false,
			logger:  logger,
		}, nil
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.StorageRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Custom endpoint for S3-compatible storage (Tigris, MinIO, etc.)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	})

	logger.Info("storage service initialized",
		"bucket", cfg.StorageBucket,
		"endpoint", cfg.StorageEndpoint,
	)

	return &StorageService{
		client:  client,
		bucket:  cfg.StorageBucket,
		enabled: true,
		logger:  logger.With("component", "storage"),
	}, nil
}

// IsEnabled returns whether storage is configured and available.
func (s *StorageService) IsEnabled() bool {
	return s != nil && s.enabled
}

// ArchiveKey is the object key of a converted file: catalog/{run_id}/{name}.csv
func ArchiveKey(runID, name string) string {
	return fmt.Sprintf("catalog/%s/%s.csv", runID, name)
}

// StoreOutput uploads a converted CSV and returns its key. It is a no-op
// returning "" when storage is disabled.
func (s *StorageService) StoreOutput(ctx context.Context, runID, name string, data []byte) (string, error) {
	if !s.IsEnabled() {
		return "", nil
	}

	key := ArchiveKey(runID, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store output: %w", err)
	}

	s.logger.Info("stored output",
		"run_id", runID,
		"key", key,
		"size_bytes", len(data),
	)
	return key, nil
}

// OutputPresignedURL returns a presigned download URL for an archived CSV.
// The URL is valid for expiry (default 1 hour).
func (s *StorageService) OutputPresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if !s.IsEnabled() {
		return "", ErrStorageDisabled
	}
	if expiry == 0 {
		expiry = time.Hour
	}

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedReq.URL, nil
}
