// Package s3api defines the slice of the S3 wire API the vendor
// backends consume, to enable testing and mocking. Both supported
// vendors expose S3-compatible endpoints, so one interface serves both.
package s3api

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the interface for the three S3 calls the sweeper makes.
type ObjectAPI interface {
	// ListBuckets lists the accessible buckets
	ListBuckets(
		ctx context.Context,
		params *s3.ListBucketsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListBucketsOutput, error)

	// ListObjectsV2 lists objects in a bucket
	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)

	// DeleteObjects deletes multiple objects in one request
	DeleteObjects(
		ctx context.Context,
		params *s3.DeleteObjectsInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

// Verify that the AWS S3 client implements our interface
var _ ObjectAPI = (*s3.Client)(nil)
