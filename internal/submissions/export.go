package submissions

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"inviteform/internal/shared/config"
)

// Uploader stores an export object and returns where it went
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte) (string, error)
}

var csvHeader = []string{
	"occurred_at", "registration_code", "outcome", "guest_count",
	"names", "phones", "remaining_before", "remaining_after", "lang", "message",
}

// WriteCSV renders one line per submission, guests joined with " | "
func WriteCSV(rows []Submission) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, s := range rows {
		names := make([]string, 0, len(s.Entries))
		phones := make([]string, 0, len(s.Entries))
		for _, e := range s.Entries {
			names = append(names, e.Name)
			phones = append(phones, e.Phone)
		}

		after := ""
		if s.RemainingAfter != nil {
			after = strconv.Itoa(*s.RemainingAfter)
		}

		record := []string{
			s.OccurredAt.UTC().Format(time.RFC3339),
			s.RegistrationCode,
			string(s.Outcome),
			strconv.Itoa(s.GuestCount),
			strings.Join(names, " | "),
			strings.Join(phones, " | "),
			strconv.Itoa(s.RemainingBefore),
			after,
			s.Lang,
			s.Message,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportKey names the export object under prefix
func ExportKey(prefix, code string, at time.Time) string {
	name := "all"
	if code != "" {
		name = code
	}
	return path.Join(prefix, fmt.Sprintf("%s-%s.csv", name, at.UTC().Format("20060102T150405Z")))
}

// S3Uploader puts exports into an S3 bucket
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader builds a client from the AWS settings; static keys win over the default chain
func NewS3Uploader(ctx context.Context, cfg config.AWSConfig) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{client: client, bucket: cfg.S3Bucket}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, body []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
