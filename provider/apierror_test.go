package provider

import (
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	sweeperrors "github.com/bucketsweep/bucketsweep/errors"
)

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "access denied",
			err:      apiError("AccessDenied", "Access Denied"),
			sentinel: sweeperrors.ErrAuthentication,
		},
		{
			name:     "invalid access key",
			err:      apiError("InvalidAccessKeyId", "key does not exist"),
			sentinel: sweeperrors.ErrAuthentication,
		},
		{
			name:     "signature mismatch",
			err:      apiError("SignatureDoesNotMatch", "check your key"),
			sentinel: sweeperrors.ErrAuthentication,
		},
		{
			name:     "no such bucket",
			err:      apiError("NoSuchBucket", "bucket does not exist"),
			sentinel: sweeperrors.ErrBucketNotFound,
		},
		{
			name:     "slow down",
			err:      apiError("SlowDown", "reduce your request rate"),
			sentinel: sweeperrors.ErrRateLimit,
		},
		{
			name:     "too many requests",
			err:      apiError("TooManyRequests", "throttled"),
			sentinel: sweeperrors.ErrRateLimit,
		},
		{
			name:     "unknown api error",
			err:      apiError("InternalError", "we broke"),
			sentinel: sweeperrors.ErrStorage,
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("connection reset"),
			sentinel: sweeperrors.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError("listFiles", "my-bucket", tt.err)
			assert.ErrorIs(t, got, tt.sentinel)

			var e *sweeperrors.Error
			assert.ErrorAs(t, got, &e)
			assert.Equal(t, "listFiles", e.Op)
			assert.Equal(t, "my-bucket", e.Bucket)
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	assert.NoError(t, ClassifyError("listFiles", "b", nil))
}
