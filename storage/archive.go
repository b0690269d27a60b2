package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tendertriage/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ArchiveConfig contains minimal configuration for the notice archive.
// Values are optional and fall back to the standard AWS config/credential chain.
type ArchiveConfig struct {
	// Bucket receiving archived notices. Required.
	Bucket string
	// Region to use for requests, e.g. "eu-west-3". If empty, AWS defaults apply.
	Region string
	// Profile selects a named shared config/credentials profile. If empty, default chain applies.
	Profile string
	// UsePathStyle forces path-style addressing (useful for S3-compatible providers).
	UsePathStyle bool
}

// Archive persists the full canonical form of every notice that reached
// analysis, keyed by notice ID. The hot store only keeps the triage
// projection; the archive keeps the evidence.
type Archive struct {
	client *s3.Client
	bucket string
}

// NewArchive creates a notice archive using the default AWS configuration
// chain, with optional overrides from ArchiveConfig.
func NewArchive(ctx context.Context, cfg ArchiveConfig) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Archive{client: c, bucket: cfg.Bucket}, nil
}

func noticeKey(id string) string {
	return "notices/" + id + ".json"
}

// Put archives a notice record as JSON under notices/<id>.json
func (a *Archive) Put(ctx context.Context, record *types.CanonicalRecord) error {
	if record.ID == "" {
		return errors.New("notice record has no ID")
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode notice %s: %w", record.ID, err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(noticeKey(record.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive notice %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves an archived notice by ID
func (a *Archive) Get(ctx context.Context, id string) (*types.CanonicalRecord, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(noticeKey(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read archived notice %s: %w", id, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived notice %s: %w", id, err)
	}

	var record types.CanonicalRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("archived notice %s is not valid JSON: %w", id, err)
	}
	return &record, nil
}

// Exists returns true if the notice is already archived; false on 404/NotFound.
func (a *Archive) Exists(ctx context.Context, id string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(noticeKey(id)),
	})
	if err == nil {
		return true, nil
	}

	// Check for HTTP 404 response error
	var respErr *http.ResponseError
	if errors.As(err, &respErr) {
		if respErr.HTTPStatusCode() == 404 {
			return false, nil
		}
	}

	// Check for API error code NotFound
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
	}

	return false, err
}

// Delete removes an archived notice, used when a cancellation retires it
func (a *Archive) Delete(ctx context.Context, id string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(noticeKey(id)),
	})
	return err
}
