// Package deleter executes confirmed, batched deletions against a
// storage provider. Results stream back one file at a time so callers
// can report progress on large sweeps.
package deleter

import (
	"context"
	"log/slog"
	"time"

	"github.com/bucketsweep/bucketsweep/models"
	"github.com/bucketsweep/bucketsweep/provider"
)

// DefaultBatchSize is the number of keys sent per delete request when
// no batch size is configured.
const DefaultBatchSize = 100

// Confirmer answers whether a pending deletion should proceed. The CLI
// implements it over stdin; tests implement it inline.
type Confirmer interface {
	Confirm(summary models.DeletionSummary) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(summary models.DeletionSummary) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(summary models.DeletionSummary) bool {
	return f(summary)
}

// Option configures a Deleter.
type Option func(*Deleter)

// WithBatchSize sets the number of keys per delete request. Values
// above the provider batch cap are clamped to it; zero and negative
// values keep the default.
func WithBatchSize(n int) Option {
	return func(d *Deleter) {
		if n > 0 {
			d.batchSize = min(n, provider.MaxBatchDelete)
		}
	}
}

// WithDryRun makes Delete report what would be removed without issuing
// any provider calls.
func WithDryRun(dryRun bool) Option {
	return func(d *Deleter) {
		d.dryRun = dryRun
	}
}

// WithLogger sets the logger the deleter emits events to.
func WithLogger(log *slog.Logger) Option {
	return func(d *Deleter) {
		d.log = log
	}
}

// WithConfirmer sets the confirmation hook consulted before deletion.
func WithConfirmer(c Confirmer) Option {
	return func(d *Deleter) {
		d.confirmer = c
	}
}

// Deleter deletes files through a storage provider in batches.
type Deleter struct {
	provider  provider.StorageProvider
	batchSize int
	dryRun    bool
	confirmer Confirmer
	log       *slog.Logger
}

// New creates a Deleter over the given provider.
func New(p provider.StorageProvider, opts ...Option) *Deleter {
	d := &Deleter{
		provider:  p,
		batchSize: DefaultBatchSize,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateSummary aggregates the pending file set into the totals shown
// to the user before confirmation.
func (d *Deleter) CreateSummary(files []models.FileInfo) models.DeletionSummary {
	summary := models.DeletionSummary{
		FilesByBucket: make(map[string]int),
		SizeByBucket:  make(map[string]int64),
		Provider:      "unknown",
	}
	if len(files) > 0 {
		summary.Provider = files[0].Provider
	}
	for _, f := range files {
		summary.TotalFiles++
		summary.TotalSize += f.Size
		summary.FilesByBucket[f.Bucket]++
		summary.SizeByBucket[f.Bucket] += f.Size
	}
	return summary
}

// Delete removes the given files and streams one result per file. The
// pending summary is always computed and logged. Unless
// skipConfirmation is set, the configured confirmer is consulted next;
// a decline (or a missing confirmer) cancels the run before any
// provider call. Dry-run follows the exact same grouping, batching, and
// confirmation path, substituting synthesized successes for the
// provider call. Batch failures are converted to per-file failure
// results and the remaining batches still run.
func (d *Deleter) Delete(ctx context.Context, files []models.FileInfo, skipConfirmation bool) *ResultIterator {
	it := &ResultIterator{deleter: d, ctx: ctx}

	if len(files) == 0 {
		d.log.Info("no_files_to_delete")
		it.done = true
		return it
	}

	summary := d.CreateSummary(files)
	d.log.Info("deletion_summary",
		slog.Int("total_files", summary.TotalFiles),
		slog.Int64("total_size", summary.TotalSize),
		slog.Int("buckets", len(summary.FilesByBucket)),
		slog.String("provider", summary.Provider))

	if !skipConfirmation {
		if d.confirmer == nil || !d.confirmer.Confirm(summary) {
			d.log.Info("deletion_cancelled_by_user",
				slog.Int("total_files", summary.TotalFiles))
			it.done = true
			it.cancelled = true
			return it
		}
	}

	d.log.Info("deletion_started",
		slog.Int("total_files", len(files)),
		slog.Bool("dry_run", d.dryRun))

	it.batches = groupBatches(files, d.batchSize)
	return it
}

// batch is one delete request's worth of files from a single bucket.
type batch struct {
	bucket string
	files  []models.FileInfo
}

// groupBatches splits files into per-bucket batches of at most size
// keys. Buckets are processed in order of first appearance and keys
// keep their input order within a bucket.
func groupBatches(files []models.FileInfo, size int) []batch {
	byBucket := make(map[string][]models.FileInfo)
	var order []string
	for _, f := range files {
		if _, ok := byBucket[f.Bucket]; !ok {
			order = append(order, f.Bucket)
		}
		byBucket[f.Bucket] = append(byBucket[f.Bucket], f)
	}

	var batches []batch
	for _, bucket := range order {
		bucketFiles := byBucket[bucket]
		for start := 0; start < len(bucketFiles); start += size {
			end := min(start+size, len(bucketFiles))
			batches = append(batches, batch{bucket: bucket, files: bucketFiles[start:end]})
		}
	}
	return batches
}

// ResultIterator streams deletion results. It is forward-only and not
// safe for concurrent use.
type ResultIterator struct {
	deleter *Deleter
	ctx     context.Context

	batches []batch

	buf       []models.DeletionResult
	pos       int
	bucket    string
	success   int
	failed    int
	done      bool
	cancelled bool
}

// Cancelled reports whether the run was declined at confirmation.
func (it *ResultIterator) Cancelled() bool {
	return it.cancelled
}

// Next advances to the next deletion result. It returns false once
// every file has been accounted for.
func (it *ResultIterator) Next() (models.DeletionResult, bool) {
	var zero models.DeletionResult
	if it.done {
		return zero, false
	}

	for it.pos >= len(it.buf) {
		if len(it.batches) == 0 {
			it.done = true
			it.deleter.log.Info("deletion_completed",
				slog.Int("success", it.success),
				slog.Int("failed", it.failed),
				slog.Bool("dry_run", it.deleter.dryRun))
			return zero, false
		}
		b := it.batches[0]
		it.batches = it.batches[1:]
		it.buf = it.runBatch(b)
		it.pos = 0
	}

	result := it.buf[it.pos]
	it.pos++
	if result.Success {
		it.success++
		if it.deleter.dryRun {
			it.deleter.log.Info("file_would_be_deleted",
				slog.String("bucket", result.File.Bucket),
				slog.String("key", result.File.Key),
				slog.Int64("size", result.File.Size))
		} else {
			it.deleter.log.Debug("file_deleted",
				slog.String("bucket", result.File.Bucket),
				slog.String("key", result.File.Key))
		}
	} else {
		it.failed++
		it.deleter.log.Warn("file_delete_failed",
			slog.String("bucket", result.File.Bucket),
			slog.String("key", result.File.Key),
			slog.String("error", result.Error))
	}
	return result, true
}

// runBatch issues one delete request, or synthesizes its results in
// dry-run mode. A request-level error becomes a failure result for each
// file in the batch so later batches proceed.
func (it *ResultIterator) runBatch(b batch) []models.DeletionResult {
	if it.bucket != b.bucket {
		it.bucket = b.bucket
		it.deleter.log.Info("deleting_bucket", slog.String("bucket", b.bucket))
	}

	if it.deleter.dryRun {
		now := time.Now().UTC()
		results := make([]models.DeletionResult, 0, len(b.files))
		for _, f := range b.files {
			results = append(results, models.DeletionResult{
				File:      f,
				Success:   true,
				Timestamp: now,
			})
		}
		return results
	}

	keys := make([]string, 0, len(b.files))
	for _, f := range b.files {
		keys = append(keys, f.Key)
	}

	results, err := it.deleter.provider.BatchDelete(it.ctx, b.bucket, keys)
	if err != nil {
		it.deleter.log.Error("batch_delete_error",
			slog.String("bucket", b.bucket),
			slog.Int("keys", len(keys)),
			slog.String("error", err.Error()))
		now := time.Now().UTC()
		failed := make([]models.DeletionResult, 0, len(b.files))
		for _, f := range b.files {
			failed = append(failed, models.DeletionResult{
				File:      f,
				Success:   false,
				Error:     err.Error(),
				Timestamp: now,
			})
		}
		return failed
	}
	return results
}

// Err is present for symmetry with the scan iterators. Delete never
// aborts mid-stream; failures surface as per-file results.
func (it *ResultIterator) Err() error {
	return nil
}

// Collect drains the iterator into a slice.
func (it *ResultIterator) Collect() []models.DeletionResult {
	var out []models.DeletionResult
	for {
		result, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, result)
	}
}
