package provider

import (
	stderrors "errors"
	"fmt"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/bucketsweep/bucketsweep/errors"
)

// ClassifyError maps a vendor SDK failure onto the sweep error
// taxonomy: authentication failure, bucket-not-found, vendor-side
// throttling, or the generic storage error. Both supported vendors
// speak the S3 wire protocol, so classification keys off the S3 error
// codes and the HTTP status.
func ClassifyError(op, bucket string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errors.NewBucketError(op, bucket,
				fmt.Errorf("%w: %s", errors.ErrAuthentication, apiErr.ErrorMessage()))
		case "NoSuchBucket":
			return errors.NewBucketError(op, bucket, errors.ErrBucketNotFound)
		case "TooManyRequests", "SlowDown", "RequestLimitExceeded":
			return errors.NewBucketError(op, bucket,
				fmt.Errorf("%w: %s", errors.ErrRateLimit, apiErr.ErrorMessage()))
		}
	}

	var respErr *smithyhttp.ResponseError
	if stderrors.As(err, &respErr) && respErr.HTTPStatusCode() == 429 {
		return errors.NewBucketError(op, bucket,
			fmt.Errorf("%w: %v", errors.ErrRateLimit, err))
	}

	return errors.NewBucketError(op, bucket, fmt.Errorf("%w: %v", errors.ErrStorage, err))
}
