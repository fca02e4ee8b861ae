// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package blob

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/uuid"
)

// S3Config holds the credentials and addressing for an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS proper; set for R2/MinIO
	AccessKey string
	SecretKey string

	// PublicBaseURL is the prefix under which stored objects are publicly
	// reachable. Object URLs are PublicBaseURL + "/" + key.
	PublicBaseURL string
}

// S3Store implements [Store] backed by an S3-compatible bucket.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store builds the S3 client with static credentials and an optional
// custom endpoint, and validates the addressing configuration.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("blob: bucket and public base URL are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("blob: failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing is required by most S3-compatible stores.
			options.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores the file under a date-partitioned random key and returns its
// public URL.
func (store *S3Store) Upload(ctx context.Context, file *File) (string, error) {
	if file == nil {
		return "", fmt.Errorf("blob: no file to upload")
	}

	key := newObjectKey(file.Name)

	_, err := store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(store.bucket),
		Key:           aws.String(key),
		Body:          file.Content,
		ContentType:   aws.String(file.ContentType),
		ContentLength: aws.Int64(file.Size),
	})
	if err != nil {
		return "", fmt.Errorf("blob: failed to upload object %s: %w", key, err)
	}

	return store.publicBaseURL + "/" + key, nil
}

// Delete removes the object with the given key.
func (store *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("blob: failed to delete object %s: %w", key, err)
	}

	return nil
}

// KeyFromURL derives the object key from a stored public URL.
//
// URLs produced by this store are PublicBaseURL + "/" + key, so the primary
// path is a prefix strip. For URLs minted by an earlier configuration the
// bucket-relative path segment is used as a fallback.
func (store *S3Store) KeyFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	if strings.HasPrefix(rawURL, store.publicBaseURL+"/") {
		return strings.TrimPrefix(rawURL, store.publicBaseURL+"/")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	// Fallback: take the path after the bucket segment if present.
	trimmed := strings.TrimPrefix(parsed.Path, "/")
	if rest, found := strings.CutPrefix(trimmed, store.bucket+"/"); found {
		return rest
	}

	return trimmed
}

// newObjectKey generates a collision-free, date-partitioned storage key.
// The original file name contributes only its extension.
func newObjectKey(fileName string) string {
	now := time.Now().UTC()
	extension := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New(), extension)
}
