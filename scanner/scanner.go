// Package scanner turns raw provider enumeration into filtered result
// streams. Scanning is lazy end to end: buckets and objects are pulled
// from the provider only as the consumer advances, so neither a bucket
// nor the bucket set is ever materialized in memory.
package scanner

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"github.com/bucketsweep/bucketsweep/errors"
	"github.com/bucketsweep/bucketsweep/internal/validation"
	"github.com/bucketsweep/bucketsweep/models"
	"github.com/bucketsweep/bucketsweep/provider"
)

// Scanner composes provider enumeration with pattern and age filtering.
type Scanner struct {
	provider provider.StorageProvider
	log      *slog.Logger
}

// New creates a Scanner over the given provider.
func New(p provider.StorageProvider) *Scanner {
	return &Scanner{
		provider: p,
		log:      slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger the scanner emits events to.
func (s *Scanner) SetLogger(log *slog.Logger) {
	s.log = log
}

// Scan returns a lazy stream of the files matching the filter: the
// bucket name matches the filter's regex (unanchored), the key matches
// the glob, and the last-modified timestamp is strictly before the
// cutoff. Both patterns and the cutoff are validated here, before any
// provider call is issued. Listing failures abort the whole scan and
// surface through the iterator's Err.
func (s *Scanner) Scan(ctx context.Context, filter models.DeletionFilter) (*FileIterator, error) {
	if err := validation.ValidateCutoff(filter.Before); err != nil {
		return nil, err
	}
	globRe, err := validation.CompileGlob(filter.FilePattern)
	if err != nil {
		return nil, err
	}
	bucketRe, err := validation.CompileBucketPattern(filter.BucketPattern)
	if err != nil {
		return nil, err
	}

	s.log.Info("scan_started",
		slog.String("bucket_pattern", filter.BucketPattern),
		slog.String("file_pattern", filter.FilePattern),
		slog.Time("before_date", filter.Before))

	return &FileIterator{
		scanner:  s,
		filter:   filter,
		bucketRe: bucketRe,
		globRe:   globRe,
		buckets:  s.provider.ListBuckets(ctx),
		ctx:      ctx,
	}, nil
}

// FileIterator is the lazy result stream of a Scan. It is forward-only
// and not safe for concurrent use.
type FileIterator struct {
	scanner  *Scanner
	filter   models.DeletionFilter
	bucketRe *regexp.Regexp
	globRe   *regexp.Regexp
	ctx      context.Context

	buckets *provider.Iterator[models.BucketInfo]
	files   *provider.Iterator[models.FileInfo]

	bucket         string
	bucketFiles    int
	matchedBuckets int
	totalFiles     int

	err  error
	done bool
}

// Next advances to the next matching file. It returns false when the
// scan is exhausted or failed; check Err afterwards.
func (it *FileIterator) Next() (models.FileInfo, bool) {
	var zero models.FileInfo
	if it.err != nil || it.done {
		return zero, false
	}

	for {
		if it.files != nil {
			file, ok := it.files.Next()
			if !ok {
				if err := it.files.Err(); err != nil {
					it.err = err
					return zero, false
				}
				if it.bucketFiles > 0 {
					it.scanner.log.Info("bucket_scan_completed",
						slog.String("bucket", it.bucket),
						slog.Int("files_matched", it.bucketFiles))
				}
				it.files = nil
				continue
			}

			if !it.globRe.MatchString(file.Key) {
				continue
			}
			if file.LastModified.IsZero() {
				it.err = errors.NewBucketError("scan", file.Bucket, errors.ErrInvalidInput).
					WithKey(file.Key).
					WithMessage("object has no last-modified timestamp")
				return zero, false
			}
			if !file.LastModified.Before(it.filter.Before) {
				continue
			}

			it.bucketFiles++
			it.totalFiles++
			return file, true
		}

		bucket, ok := it.buckets.Next()
		if !ok {
			if err := it.buckets.Err(); err != nil {
				it.err = err
				return zero, false
			}
			it.done = true
			it.scanner.log.Info("scan_completed",
				slog.Int("matched_buckets", it.matchedBuckets),
				slog.Int("total_files", it.totalFiles))
			return zero, false
		}

		if !it.bucketRe.MatchString(bucket.Name) {
			it.scanner.log.Debug("bucket_skipped",
				slog.String("bucket", bucket.Name),
				slog.String("reason", "pattern_mismatch"))
			continue
		}

		it.matchedBuckets++
		it.scanner.log.Info("bucket_matched", slog.String("bucket", bucket.Name))
		it.bucket = bucket.Name
		it.bucketFiles = 0
		it.files = it.scanner.provider.ListFiles(it.ctx, bucket.Name, "")
	}
}

// Err returns the error that aborted the scan, if any.
func (it *FileIterator) Err() error {
	return it.err
}

// Collect drains the iterator into a slice.
func (it *FileIterator) Collect() ([]models.FileInfo, error) {
	var out []models.FileInfo
	for {
		file, ok := it.Next()
		if !ok {
			return out, it.Err()
		}
		out = append(out, file)
	}
}

// ScanFileTypes returns a lazy stream of per-bucket extension
// statistics over the objects modified strictly before the cutoff.
// Aggregation is streamed bucket by bucket: each matching bucket's
// listing is consumed in full, then its summaries are emitted in
// ascending extension order before the next bucket is touched.
func (s *Scanner) ScanFileTypes(ctx context.Context, bucketPattern string, before time.Time) (*TypeIterator, error) {
	if err := validation.ValidateCutoff(before); err != nil {
		return nil, err
	}
	bucketRe, err := validation.CompileBucketPattern(bucketPattern)
	if err != nil {
		return nil, err
	}

	s.log.Info("file_type_scan_started",
		slog.String("bucket_pattern", bucketPattern),
		slog.Time("before_date", before))

	return &TypeIterator{
		scanner:  s,
		before:   before,
		bucketRe: bucketRe,
		buckets:  s.provider.ListBuckets(ctx),
		ctx:      ctx,
	}, nil
}

// TypeIterator is the lazy result stream of a ScanFileTypes call.
type TypeIterator struct {
	scanner  *Scanner
	before   time.Time
	bucketRe *regexp.Regexp
	ctx      context.Context

	buckets        *provider.Iterator[models.BucketInfo]
	pending        []models.FileTypeSummary
	matchedBuckets int

	err  error
	done bool
}

// Next advances to the next extension summary.
func (it *TypeIterator) Next() (models.FileTypeSummary, bool) {
	var zero models.FileTypeSummary
	if it.err != nil || it.done {
		return zero, false
	}

	for len(it.pending) == 0 {
		bucket, ok := it.buckets.Next()
		if !ok {
			if err := it.buckets.Err(); err != nil {
				it.err = err
				return zero, false
			}
			it.done = true
			it.scanner.log.Info("file_type_scan_completed",
				slog.Int("matched_buckets", it.matchedBuckets))
			return zero, false
		}

		if !it.bucketRe.MatchString(bucket.Name) {
			continue
		}

		it.matchedBuckets++
		it.scanner.log.Info("bucket_matched", slog.String("bucket", bucket.Name))

		summaries, err := it.aggregateBucket(bucket.Name)
		if err != nil {
			it.err = err
			return zero, false
		}
		it.pending = summaries
	}

	summary := it.pending[0]
	it.pending = it.pending[1:]
	return summary, true
}

// aggregateBucket consumes one bucket's listing and produces its
// summaries sorted by extension. Only extensions actually observed are
// emitted, so no summary ever carries a zero count.
func (it *TypeIterator) aggregateBucket(bucket string) ([]models.FileTypeSummary, error) {
	counts := make(map[string]int)
	sizes := make(map[string]int64)

	files := it.scanner.provider.ListFiles(it.ctx, bucket, "")
	for {
		file, ok := files.Next()
		if !ok {
			break
		}
		if file.LastModified.IsZero() {
			return nil, errors.NewBucketError("scanFileTypes", bucket, errors.ErrInvalidInput).
				WithKey(file.Key).
				WithMessage("object has no last-modified timestamp")
		}
		if !file.LastModified.Before(it.before) {
			continue
		}
		ext := validation.Extension(file.Key)
		counts[ext]++
		sizes[ext] += file.Size
	}
	if err := files.Err(); err != nil {
		return nil, err
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	summaries := make([]models.FileTypeSummary, 0, len(exts))
	for _, ext := range exts {
		summaries = append(summaries, models.FileTypeSummary{
			Bucket:    bucket,
			Extension: ext,
			FileCount: counts[ext],
			TotalSize: sizes[ext],
		})
	}
	return summaries, nil
}

// Err returns the error that aborted the scan, if any.
func (it *TypeIterator) Err() error {
	return it.err
}

// Collect drains the iterator into a slice.
func (it *TypeIterator) Collect() ([]models.FileTypeSummary, error) {
	var out []models.FileTypeSummary
	for {
		summary, ok := it.Next()
		if !ok {
			return out, it.Err()
		}
		out = append(out, summary)
	}
}
