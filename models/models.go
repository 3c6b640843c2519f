// Package models provides the shared value types for bucket sweeping.
// All types here are plain immutable values; they carry no behavior
// beyond formatting helpers and are safe to share between goroutines.
package models

import (
	"fmt"
	"time"
)

// NoExtension is the label used for object keys without a dot-suffix.
const NoExtension = "(no ext)"

// BucketInfo describes a storage bucket as reported by a provider.
type BucketInfo struct {
	// Name is the bucket name.
	Name string

	// CreationDate is when the bucket was created.
	CreationDate time.Time

	// Provider is the provider tag ("aliyun", "tencent").
	Provider string

	// Region is the bucket's region, if the provider reports one.
	Region string
}

// FileInfo describes a single object in a bucket.
type FileInfo struct {
	// Bucket is the bucket holding the object.
	Bucket string

	// Key is the object key.
	Key string

	// Size is the object size in bytes.
	Size int64

	// LastModified is the object's last-modified timestamp. Providers
	// normalize it to UTC before handing it out.
	LastModified time.Time

	// Provider is the provider tag.
	Provider string

	// StorageClass is the vendor storage class, if reported.
	StorageClass string
}

// DeletionFilter is the criteria for selecting files to delete.
// It is constructed once per operation and never mutated.
type DeletionFilter struct {
	// BucketPattern is a regular expression matched against bucket
	// names with unanchored substring search.
	BucketPattern string

	// FilePattern is a shell-style glob matched against object keys.
	FilePattern string

	// Before is the cutoff instant; only files strictly older match.
	// A zero value is rejected during validation.
	Before time.Time

	// Provider is the provider tag the filter targets.
	Provider string
}

// DeletionResult is the outcome of one delete attempt for one key.
type DeletionResult struct {
	// File is the object the deletion was attempted for.
	File FileInfo

	// Success reports whether the key was deleted.
	Success bool

	// Error holds the vendor-supplied error text when Success is false.
	Error string

	// Timestamp is when the outcome was recorded.
	Timestamp time.Time
}

// FileTypeSummary aggregates objects of one extension within one bucket.
type FileTypeSummary struct {
	// Bucket is the bucket the summary covers.
	Bucket string

	// Extension is the final dot-suffix (".log"), or NoExtension.
	Extension string

	// FileCount is the number of objects with this extension.
	FileCount int

	// TotalSize is the combined size in bytes.
	TotalSize int64
}

// DeletionSummary describes a planned deletion, computed before
// confirmation is requested.
type DeletionSummary struct {
	// TotalFiles is the number of files selected for deletion.
	TotalFiles int

	// TotalSize is the combined size of the selected files in bytes.
	TotalSize int64

	// FilesByBucket maps bucket name to file count.
	FilesByBucket map[string]int

	// SizeByBucket maps bucket name to combined size in bytes.
	SizeByBucket map[string]int64

	// Provider is the provider tag, or "unknown" for an empty plan.
	Provider string
}

// FormatSize renders a byte count in human-readable form.
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", value)
}
