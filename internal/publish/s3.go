package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/guimove/tablefit/internal/model"
)

var ErrNoBucket = errors.New("publish bucket not configured")

// CalendarSnapshot is the document uploaded for static booking pages to grey
// out unavailable dates.
type CalendarSnapshot struct {
	GeneratedAt time.Time               `json:"generated_at"`
	From        model.Date              `json:"from"`
	People      int                     `json:"people"`
	Days        []model.DayAvailability `json:"days"`
}

// putObjectAPI is a minimal interface for the S3 calls we need.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 publisher.
type Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3-compatible endpoint (R2, MinIO); enables path-style addressing
	AccessKeyID     string // static credentials; empty uses the default chain
	SecretAccessKey string
}

// S3Publisher uploads calendar snapshots to an S3 bucket.
type S3Publisher struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Publisher creates a publisher using the default AWS SDK config chain.
// IMDS is disabled to avoid long timeouts when running outside EC2.
func NewS3Publisher(ctx context.Context, opts Options) (*S3Publisher, error) {
	if opts.Bucket == "" {
		return nil, ErrNoBucket
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithEC2IMDSClientEnableState(imds.ClientDisabled),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Publisher(client, opts.Bucket, opts.Prefix), nil
}

func newS3Publisher(client putObjectAPI, bucket, prefix string) *S3Publisher {
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key for a calendar starting at from for a party size.
func (p *S3Publisher) Key(from model.Date, people int) string {
	name := fmt.Sprintf("calendar-%s-%dp.json", from, people)
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// PublishCalendar uploads the snapshot and returns its s3:// location.
func (p *S3Publisher) PublishCalendar(ctx context.Context, snap CalendarSnapshot) (string, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encoding calendar snapshot: %w", err)
	}

	key := p.Key(snap.From, snap.People)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("max-age=300"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading s3://%s/%s: %w", p.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}
