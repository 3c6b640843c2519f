// Package aliyun implements the storage provider for Aliyun OSS,
// driven through its S3-compatible endpoints
// (oss-<region>.aliyuncs.com).
package aliyun

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bucketsweep/bucketsweep/errors"
	"github.com/bucketsweep/bucketsweep/internal/s3api"
	"github.com/bucketsweep/bucketsweep/models"
	"github.com/bucketsweep/bucketsweep/provider"
	"github.com/bucketsweep/bucketsweep/ratelimit"
)

// Name is the provider tag for Aliyun OSS.
const Name = "aliyun"

// Config holds the validated credentials and endpoint settings for
// Aliyun OSS. Construction performs no network calls.
type Config struct {
	// AccessKeyID is the OSS access key ID.
	AccessKeyID string

	// AccessKeySecret is the OSS access key secret.
	AccessKeySecret string

	// Region is the default OSS region. Defaults to "cn-hangzhou".
	Region string

	// Scheme is "https" or "http". Defaults to "https".
	Scheme string
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if c.AccessKeyID == "" || c.AccessKeySecret == "" {
		return errors.NewError("aliyunConfig", errors.ErrInvalidInput).
			WithMessage("access key ID and secret are required")
	}
	if c.Region == "" {
		c.Region = "cn-hangzhou"
	}
	if c.Scheme == "" {
		c.Scheme = "https"
	}
	if c.Scheme != "https" && c.Scheme != "http" {
		return errors.NewError("aliyunConfig", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unsupported scheme %q", c.Scheme))
	}
	return nil
}

// Provider is the Aliyun OSS storage provider. All API calls made by
// the provider, across every regional client it creates, pass through
// one shared rate limiter.
type Provider struct {
	cfg     Config
	limiter *ratelimit.Limiter
	log     *slog.Logger

	mu        sync.Mutex
	clients   map[string]s3api.ObjectAPI
	regions   map[string]string // bucket -> region, cached from ListBuckets
	newClient func(region string) s3api.ObjectAPI
}

// New creates an Aliyun OSS provider limited to rateLimit requests per
// second.
func New(cfg Config, rateLimit int) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		),
	)
	if err != nil {
		return nil, errors.NewError("aliyunConfig", fmt.Errorf("%w: %v", errors.ErrStorage, err))
	}

	p := &Provider{
		cfg:     cfg,
		limiter: ratelimit.New(float64(rateLimit)),
		log:     slog.New(slog.DiscardHandler),
		clients: make(map[string]s3api.ObjectAPI),
		regions: make(map[string]string),
	}
	p.newClient = func(region string) s3api.ObjectAPI {
		endpoint := fmt.Sprintf("%s://oss-%s.aliyuncs.com", cfg.Scheme, region)
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.Region = region
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	return p, nil
}

// NewWithClient creates a provider that uses the given API client for
// every region. This is primarily used for testing with mocked clients.
func NewWithClient(cfg Config, limiter *ratelimit.Limiter, client s3api.ObjectAPI) *Provider {
	p := &Provider{
		cfg:     cfg,
		limiter: limiter,
		log:     slog.New(slog.DiscardHandler),
		clients: make(map[string]s3api.ObjectAPI),
		regions: make(map[string]string),
	}
	p.newClient = func(string) s3api.ObjectAPI { return client }
	return p
}

// SetLogger sets the logger the provider emits events to.
func (p *Provider) SetLogger(log *slog.Logger) {
	p.log = log
}

// Name returns the provider tag.
func (p *Provider) Name() string {
	return Name
}

// clientFor returns the client for a region, creating and caching it on
// first use.
func (p *Provider) clientFor(region string) s3api.ObjectAPI {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[region]; ok {
		return c
	}
	c := p.newClient(region)
	p.clients[region] = c
	return c
}

// clientForBucket returns the client for the bucket's region, falling
// back to the default region when the bucket was not seen during
// ListBuckets.
func (p *Provider) clientForBucket(bucket string) s3api.ObjectAPI {
	p.mu.Lock()
	region, ok := p.regions[bucket]
	p.mu.Unlock()
	if !ok {
		region = p.cfg.Region
	}
	return p.clientFor(region)
}

func (p *Provider) cacheRegion(bucket, region string) {
	p.mu.Lock()
	p.regions[bucket] = region
	p.mu.Unlock()
}

// ListBuckets enumerates all accessible buckets, caching each bucket's
// region for subsequent per-bucket calls.
func (p *Provider) ListBuckets(ctx context.Context) *provider.Iterator[models.BucketInfo] {
	return provider.NewIterator(ctx, func(ctx context.Context, token string) ([]models.BucketInfo, string, bool, error) {
		if err := p.limiter.Acquire(ctx, 1); err != nil {
			return nil, "", false, err
		}

		input := &s3.ListBucketsInput{}
		if token != "" {
			input.ContinuationToken = aws.String(token)
		}

		out, err := p.clientFor(p.cfg.Region).ListBuckets(ctx, input)
		if err != nil {
			return nil, "", false, provider.ClassifyError("listBuckets", "", err)
		}

		buckets := make([]models.BucketInfo, 0, len(out.Buckets))
		for _, b := range out.Buckets {
			name := aws.ToString(b.Name)
			region := aws.ToString(b.BucketRegion)
			if region != "" {
				p.cacheRegion(name, region)
			}
			buckets = append(buckets, models.BucketInfo{
				Name:         name,
				CreationDate: aws.ToTime(b.CreationDate).UTC(),
				Provider:     Name,
				Region:       region,
			})
		}

		next := aws.ToString(out.ContinuationToken)
		return buckets, next, next != "", nil
	})
}

// ListFiles enumerates the objects in a bucket below prefix, paginating
// with the continuation-token convention at 1000 keys per page.
func (p *Provider) ListFiles(ctx context.Context, bucket, prefix string) *provider.Iterator[models.FileInfo] {
	client := p.clientForBucket(bucket)

	return provider.NewIterator(ctx, func(ctx context.Context, token string) ([]models.FileInfo, string, bool, error) {
		if err := p.limiter.Acquire(ctx, 1); err != nil {
			return nil, "", false, err
		}

		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(prefix),
			MaxKeys: aws.Int32(provider.MaxPageSize),
		}
		if token != "" {
			input.ContinuationToken = aws.String(token)
		}

		out, err := client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, "", false, provider.ClassifyError("listFiles", bucket, err)
		}

		files := make([]models.FileInfo, 0, len(out.Contents))
		for _, obj := range out.Contents {
			files = append(files, models.FileInfo{
				Bucket:       bucket,
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified).UTC(),
				Provider:     Name,
				StorageClass: string(obj.StorageClass),
			})
		}

		next := aws.ToString(out.NextContinuationToken)
		return files, next, aws.ToBool(out.IsTruncated), nil
	})
}

// BatchDelete deletes up to 1000 keys in one rate-limited request.
// OSS reports the deleted set explicitly, and that report is
// authoritative: a requested key absent from it is treated as a
// failure even when no error entry was returned.
func (p *Provider) BatchDelete(ctx context.Context, bucket string, keys []string) ([]models.DeletionResult, error) {
	if len(keys) == 0 {
		return []models.DeletionResult{}, nil
	}
	if len(keys) > provider.MaxBatchDelete {
		return nil, errors.NewBucketError("batchDelete", bucket, errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("batch delete supports at most %d keys, got %d", provider.MaxBatchDelete, len(keys)))
	}

	if err := p.limiter.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := p.clientForBucket(bucket).DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false),
		},
	})
	if err != nil {
		return nil, provider.ClassifyError("batchDelete", bucket, err)
	}

	deleted := make(map[string]bool, len(out.Deleted))
	for _, d := range out.Deleted {
		deleted[aws.ToString(d.Key)] = true
	}
	errorText := make(map[string]string, len(out.Errors))
	for _, e := range out.Errors {
		errorText[aws.ToString(e.Key)] = fmt.Sprintf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message))
	}

	now := time.Now().UTC()
	results := make([]models.DeletionResult, 0, len(keys))
	failed := 0
	for _, key := range keys {
		file := models.FileInfo{Bucket: bucket, Key: key, Provider: Name}
		if deleted[key] {
			results = append(results, models.DeletionResult{File: file, Success: true, Timestamp: now})
			continue
		}
		failed++
		msg, ok := errorText[key]
		if !ok {
			msg = "key not reported as deleted"
		}
		results = append(results, models.DeletionResult{File: file, Success: false, Error: msg, Timestamp: now})
	}

	p.log.Info("batch_delete_completed",
		slog.String("provider", Name),
		slog.String("bucket", bucket),
		slog.Int("total", len(keys)),
		slog.Int("success", len(keys)-failed),
		slog.Int("failed", failed))

	return results, nil
}
