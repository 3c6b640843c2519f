package aliyun

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/bucketsweep/bucketsweep/errors"
	"github.com/bucketsweep/bucketsweep/internal/testutil"
	"github.com/bucketsweep/bucketsweep/provider"
	"github.com/bucketsweep/bucketsweep/ratelimit"
)

func testProvider(mock *testutil.MockObjectAPI) *Provider {
	return NewWithClient(
		Config{AccessKeyID: "ak", AccessKeySecret: "sk", Region: "cn-hangzhou", Scheme: "https"},
		ratelimit.New(10000),
		mock,
	)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{AccessKeyID: "ak", AccessKeySecret: "sk"},
		},
		{
			name:    "missing key",
			cfg:     Config{AccessKeySecret: "sk"},
			wantErr: true,
		},
		{
			name:    "missing secret",
			cfg:     Config{AccessKeyID: "ak"},
			wantErr: true,
		},
		{
			name:    "bad scheme",
			cfg:     Config{AccessKeyID: "ak", AccessKeySecret: "sk", Scheme: "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.True(t, sweeperrors.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "cn-hangzhou", tt.cfg.Region)
			assert.Equal(t, "https", tt.cfg.Scheme)
		})
	}
}

func TestListBucketsPaginates(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock := &testutil.MockObjectAPI{
		ListBucketsFunc: func(ctx context.Context, params *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
			if aws.ToString(params.ContinuationToken) == "" {
				return &s3.ListBucketsOutput{
					Buckets: []types.Bucket{
						{Name: aws.String("alpha"), CreationDate: aws.Time(created), BucketRegion: aws.String("cn-hangzhou")},
					},
					ContinuationToken: aws.String("page2"),
				}, nil
			}
			return &s3.ListBucketsOutput{
				Buckets: []types.Bucket{
					{Name: aws.String("beta"), CreationDate: aws.Time(created), BucketRegion: aws.String("cn-beijing")},
				},
			}, nil
		},
	}
	p := testProvider(mock)

	buckets, err := p.ListBuckets(context.Background()).Collect()
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, 2, mock.ListBucketsCalls)

	assert.Equal(t, "alpha", buckets[0].Name)
	assert.Equal(t, created, buckets[0].CreationDate)
	assert.Equal(t, Name, buckets[0].Provider)
	assert.Equal(t, "cn-hangzhou", buckets[0].Region)
	assert.Equal(t, "beta", buckets[1].Name)
	assert.Equal(t, "cn-beijing", buckets[1].Region)
}

func TestListFilesPaginates(t *testing.T) {
	modified := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock := &testutil.MockObjectAPI{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "logs", aws.ToString(params.Bucket))
			assert.Equal(t, "app/", aws.ToString(params.Prefix))

			if aws.ToString(params.ContinuationToken) == "" {
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("app/a.log"), Size: aws.Int64(10), LastModified: aws.Time(modified), StorageClass: types.ObjectStorageClassStandard},
					},
					NextContinuationToken: aws.String("next"),
					IsTruncated:           aws.Bool(true),
				}, nil
			}
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("app/b.log"), Size: aws.Int64(20), LastModified: aws.Time(modified)},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}
	p := testProvider(mock)

	files, err := p.ListFiles(context.Background(), "logs", "app/").Collect()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 2, mock.ListObjectsV2Calls)

	assert.Equal(t, "app/a.log", files[0].Key)
	assert.Equal(t, int64(10), files[0].Size)
	assert.Equal(t, modified, files[0].LastModified)
	assert.Equal(t, Name, files[0].Provider)
	assert.Equal(t, "STANDARD", files[0].StorageClass)
}

func TestListFilesErrorMapping(t *testing.T) {
	mock := &testutil.MockObjectAPI{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NoSuchBucket"})
		},
	}
	p := testProvider(mock)

	_, err := p.ListFiles(context.Background(), "ghost", "").Collect()
	assert.True(t, sweeperrors.IsBucketNotFound(err))
}

func TestBatchDeleteReportsDeletedSet(t *testing.T) {
	mock := &testutil.MockObjectAPI{
		DeleteObjectsFunc: func(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			// Verbose mode: the deleted set comes back explicitly.
			require.False(t, aws.ToBool(params.Delete.Quiet))
			return &s3.DeleteObjectsOutput{
				Deleted: []types.DeletedObject{
					{Key: aws.String("a")},
				},
				Errors: []types.Error{
					{Key: aws.String("b"), Code: aws.String("AccessDenied"), Message: aws.String("denied")},
				},
			}, nil
		},
	}
	p := testProvider(mock)

	results, err := p.BatchDelete(context.Background(), "logs", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)

	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "AccessDenied")

	// "c" was neither deleted nor reported failed; the deleted set is
	// authoritative, so it counts as a failure.
	assert.False(t, results[2].Success)
	assert.Equal(t, "key not reported as deleted", results[2].Error)
}

func TestBatchDeleteValidation(t *testing.T) {
	mock := &testutil.MockObjectAPI{}
	p := testProvider(mock)

	results, err := p.BatchDelete(context.Background(), "logs", nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	keys := make([]string, provider.MaxBatchDelete+1)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}
	_, err = p.BatchDelete(context.Background(), "logs", keys)
	assert.True(t, sweeperrors.IsInvalidInput(err))

	assert.Zero(t, mock.DeleteObjectsCalls)
}

func TestRegionCachedFromListBuckets(t *testing.T) {
	mock := &testutil.MockObjectAPI{
		ListBucketsFunc: func(ctx context.Context, params *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
			return &s3.ListBucketsOutput{
				Buckets: []types.Bucket{
					{Name: aws.String("far-away"), BucketRegion: aws.String("cn-shenzhen")},
				},
			}, nil
		},
	}
	p := testProvider(mock)

	_, err := p.ListBuckets(context.Background()).Collect()
	require.NoError(t, err)

	p.mu.Lock()
	region := p.regions["far-away"]
	p.mu.Unlock()
	assert.Equal(t, "cn-shenzhen", region)
}
