// Package tencent implements the storage provider for Tencent COS,
// driven through its S3-compatible endpoints
// (cos.<region>.myqcloud.com).
package tencent

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

// Name is the provider tag for Tencent COS.
const Name = "tencent"

// Config holds the validated credentials and endpoint settings for
// Tencent COS. Construction performs no network calls.
type Config struct {
	// SecretID is the COS secret ID.
	SecretID string

	// SecretKey is the COS secret key.
	SecretKey string

	// Region is the default COS region. Defaults to "ap-guangzhou".
	Region string

	// Scheme is "https" or "http". Defaults to "https".
	Scheme string
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if c.SecretID == "" || c.SecretKey == "" {
		return errors.NewError("tencentConfig", errors.ErrInvalidInput).
			WithMessage("secret ID and secret key are required")
	}
	if c.Region == "" {
		c.Region = "ap-guangzhou"
	}
	if c.Scheme == "" {
		c.Scheme = "https"
	}
	if c.Scheme != "https" && c.Scheme != "http" {
		return errors.NewError("tencentConfig", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unsupported scheme %q", c.Scheme))
	}
	return nil
}

// Provider is the Tencent COS storage provider. One shared rate
// limiter paces every call, including those made by per-region clients.
type Provider struct {
	cfg     Config
	limiter *ratelimit.Limiter
	log     *slog.Logger

	mu        sync.Mutex
	clients   map[string]s3api.ObjectAPI
	regions   map[string]string // bucket -> region, cached from ListBuckets
	newClient func(region string) s3api.ObjectAPI
}

// New creates a Tencent COS provider limited to rateLimit requests per
// second.
func New(cfg Config, rateLimit int) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SecretID, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, errors.NewError("tencentConfig", fmt.Errorf("%w: %v", errors.ErrStorage, err))
	}

	p := &Provider{
		cfg:     cfg,
		limiter: ratelimit.New(float64(rateLimit)),
		log:     slog.New(slog.DiscardHandler),
		clients: make(map[string]s3api.ObjectAPI),
		regions: make(map[string]string),
	}
	p.newClient = func(region string) s3api.ObjectAPI {
		endpoint := fmt.Sprintf("%s://cos.%s.myqcloud.com", cfg.Scheme, region)
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
// region so later per-bucket calls hit the right regional endpoint.
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
// COS is driven in quiet mode, which reports failures only; success is
// inferred as the requested set minus the reported failures.
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
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return nil, provider.ClassifyError("batchDelete", bucket, err)
	}

	errorText := make(map[string]string, len(out.Errors))
	for _, e := range out.Errors {
		errorText[aws.ToString(e.Key)] = fmt.Sprintf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message))
	}

	now := time.Now().UTC()
	results := make([]models.DeletionResult, 0, len(keys))
	for _, key := range keys {
		file := models.FileInfo{Bucket: bucket, Key: key, Provider: Name}
		if msg, ok := errorText[key]; ok {
			results = append(results, models.DeletionResult{File: file, Success: false, Error: msg, Timestamp: now})
			continue
		}
		results = append(results, models.DeletionResult{File: file, Success: true, Timestamp: now})
	}

	p.log.Info("batch_delete_completed",
		slog.String("provider", Name),
		slog.String("bucket", bucket),
		slog.Int("total", len(keys)),
		slog.Int("success", len(keys)-len(errorText)),
		slog.Int("failed", len(errorText)))

	return results, nil
}
