// Package provider defines the narrow storage-provider contract the
// scan and delete pipeline is built on, plus the pieces shared by the
// vendor implementations: page iteration and vendor error
// classification. Concrete backends live in the aliyun and tencent
// subpackages.
package provider

import (
	"context"

	"github.com/bucketsweep/bucketsweep/models"
)

// MaxBatchDelete is the largest key count a single batch-delete request
// may carry. Both supported vendors cap their delete API at 1000 keys.
const MaxBatchDelete = 1000

// MaxPageSize is the largest object page the vendors return per
// list request.
const MaxPageSize = 1000

// StorageProvider is the contract between a vendor backend and the
// scan/delete pipeline. Implementations pace every page request and
// every delete request through a shared rate limiter, and classify
// vendor failures onto the errors package sentinels.
type StorageProvider interface {
	// Name returns the provider tag ("aliyun", "tencent").
	Name() string

	// ListBuckets enumerates all accessible buckets. The iterator is
	// forward-only and restartable per call. Implementations cache the
	// bucket-to-region mapping discovered here for later per-bucket
	// calls.
	ListBuckets(ctx context.Context) *Iterator[models.BucketInfo]

	// ListFiles enumerates objects in a bucket, optionally below a key
	// prefix, fully paginating the vendor listing without materializing
	// the bucket in memory. Last-modified timestamps are normalized
	// to UTC.
	ListFiles(ctx context.Context, bucket, prefix string) *Iterator[models.FileInfo]

	// BatchDelete deletes up to MaxBatchDelete keys in one rate-limited
	// request and returns one DeletionResult per requested key. Passing
	// more keys is a validation error; passing none returns an empty
	// result without a network call.
	BatchDelete(ctx context.Context, bucket string, keys []string) ([]models.DeletionResult, error)
}
