package testutil

import (
	"context"
	"time"

	"github.com/bucketsweep/bucketsweep/models"
	"github.com/bucketsweep/bucketsweep/provider"
)

// StubProvider is an in-memory StorageProvider for scanner and deleter
// tests. It records every call so tests can assert on laziness and
// batching behavior.
type StubProvider struct {
	// ProviderName is the tag returned by Name. Defaults to "stub".
	ProviderName string

	// Buckets is the bucket listing.
	Buckets []models.BucketInfo

	// Files maps bucket name to its object listing.
	Files map[string][]models.FileInfo

	// ListBucketsErr, when set, fails bucket enumeration.
	ListBucketsErr error

	// ListFilesErr maps bucket name to an error failing that bucket's
	// object listing.
	ListFilesErr map[string]error

	// BatchDeleteErr maps bucket name to an error failing every batch
	// delete against it.
	BatchDeleteErr map[string]error

	// BatchDeleteFunc, when set, overrides the default behavior of
	// reporting every key as deleted.
	BatchDeleteFunc func(bucket string, keys []string) ([]models.DeletionResult, error)

	// Call records.
	ListBucketsCalls int
	ListFilesCalls   map[string]int
	DeletedBatches   []DeletedBatch
}

// DeletedBatch records one BatchDelete invocation.
type DeletedBatch struct {
	Bucket string
	Keys   []string
}

var _ provider.StorageProvider = (*StubProvider)(nil)

// Name implements provider.StorageProvider.
func (s *StubProvider) Name() string {
	if s.ProviderName == "" {
		return "stub"
	}
	return s.ProviderName
}

// ListBuckets implements provider.StorageProvider.
func (s *StubProvider) ListBuckets(ctx context.Context) *provider.Iterator[models.BucketInfo] {
	return provider.NewIterator(ctx, func(ctx context.Context, token string) ([]models.BucketInfo, string, bool, error) {
		s.ListBucketsCalls++
		if s.ListBucketsErr != nil {
			return nil, "", false, s.ListBucketsErr
		}
		return s.Buckets, "", false, nil
	})
}

// ListFiles implements provider.StorageProvider.
func (s *StubProvider) ListFiles(ctx context.Context, bucket, prefix string) *provider.Iterator[models.FileInfo] {
	return provider.NewIterator(ctx, func(ctx context.Context, token string) ([]models.FileInfo, string, bool, error) {
		if s.ListFilesCalls == nil {
			s.ListFilesCalls = make(map[string]int)
		}
		s.ListFilesCalls[bucket]++
		if err := s.ListFilesErr[bucket]; err != nil {
			return nil, "", false, err
		}
		return s.Files[bucket], "", false, nil
	})
}

// BatchDelete implements provider.StorageProvider.
func (s *StubProvider) BatchDelete(ctx context.Context, bucket string, keys []string) ([]models.DeletionResult, error) {
	s.DeletedBatches = append(s.DeletedBatches, DeletedBatch{Bucket: bucket, Keys: append([]string(nil), keys...)})

	if err := s.BatchDeleteErr[bucket]; err != nil {
		return nil, err
	}
	if s.BatchDeleteFunc != nil {
		return s.BatchDeleteFunc(bucket, keys)
	}

	now := time.Now().UTC()
	results := make([]models.DeletionResult, 0, len(keys))
	for _, key := range keys {
		results = append(results, models.DeletionResult{
			File:      models.FileInfo{Bucket: bucket, Key: key, Provider: s.Name()},
			Success:   true,
			Timestamp: now,
		})
	}
	return results, nil
}
