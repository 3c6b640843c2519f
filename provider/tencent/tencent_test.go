package tencent

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
		Config{SecretID: "id", SecretKey: "key", Region: "ap-guangzhou", Scheme: "https"},
		ratelimit.New(10000),
		mock,
	)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{SecretID: "id", SecretKey: "key"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ap-guangzhou", cfg.Region)
	assert.Equal(t, "https", cfg.Scheme)

	missing := Config{SecretID: "id"}
	assert.True(t, sweeperrors.IsInvalidInput(missing.Validate()))

	badScheme := Config{SecretID: "id", SecretKey: "key", Scheme: "gopher"}
	assert.True(t, sweeperrors.IsInvalidInput(badScheme.Validate()))
}

func TestListBuckets(t *testing.T) {
	created := time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)
	mock := &testutil.MockObjectAPI{
		ListBucketsFunc: func(ctx context.Context, params *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
			return &s3.ListBucketsOutput{
				Buckets: []types.Bucket{
					{Name: aws.String("media-1250000000"), CreationDate: aws.Time(created), BucketRegion: aws.String("ap-shanghai")},
				},
			}, nil
		},
	}
	p := testProvider(mock)

	buckets, err := p.ListBuckets(context.Background()).Collect()
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "media-1250000000", buckets[0].Name)
	assert.Equal(t, Name, buckets[0].Provider)
	assert.Equal(t, "ap-shanghai", buckets[0].Region)
}

func TestListFilesAuthenticationError(t *testing.T) {
	mock := &testutil.MockObjectAPI{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, &smithy.GenericAPIError{Code: "InvalidAccessKeyId", Message: "key not found"}
		},
	}
	p := testProvider(mock)

	_, err := p.ListFiles(context.Background(), "media", "").Collect()
	assert.True(t, sweeperrors.IsAuthentication(err))
}

func TestBatchDeleteQuietMode(t *testing.T) {
	mock := &testutil.MockObjectAPI{
		DeleteObjectsFunc: func(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			// Quiet mode: only failures come back.
			require.True(t, aws.ToBool(params.Delete.Quiet))
			return &s3.DeleteObjectsOutput{
				Errors: []types.Error{
					{Key: aws.String("b"), Code: aws.String("InternalError"), Message: aws.String("retry later")},
				},
			}, nil
		},
	}
	p := testProvider(mock)

	results, err := p.BatchDelete(context.Background(), "media", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Everything not reported failed is a success.
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "InternalError")
	assert.True(t, results[2].Success)
}

func TestBatchDeleteValidation(t *testing.T) {
	mock := &testutil.MockObjectAPI{}
	p := testProvider(mock)

	results, err := p.BatchDelete(context.Background(), "media", []string{})
	require.NoError(t, err)
	assert.Empty(t, results)

	keys := make([]string, provider.MaxBatchDelete+1)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}
	_, err = p.BatchDelete(context.Background(), "media", keys)
	assert.True(t, sweeperrors.IsInvalidInput(err))

	assert.Zero(t, mock.DeleteObjectsCalls)
}

func TestBatchDeleteRequestError(t *testing.T) {
	mock := &testutil.MockObjectAPI{
		DeleteObjectsFunc: func(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "SlowDown", Message: "throttled"}
		},
	}
	p := testProvider(mock)

	_, err := p.BatchDelete(context.Background(), "media", []string{"a"})
	assert.True(t, sweeperrors.IsRateLimit(err))
}
