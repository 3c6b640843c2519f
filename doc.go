// Package bucketsweep cleans up aged objects across cloud object
// stores. It scans buckets matched by a regular expression, filters
// object keys with shell-style globs and a last-modified cutoff, and
// deletes the matches in batches after an explicit confirmation.
//
// Two vendors are supported, Aliyun OSS and Tencent COS, both driven
// through their S3-compatible APIs behind a common StorageProvider
// interface. Every provider call is paced by a shared token-bucket
// rate limiter so a sweep cannot exhaust a vendor request quota.
//
// Basic usage:
//
//	p, err := bucketsweep.NewProvider("aliyun", 100)
//	if err != nil {
//		return err
//	}
//
//	s := scanner.New(p)
//	it, err := s.Scan(ctx, models.DeletionFilter{
//		BucketPattern: "^test-",
//		FilePattern:   "*.log",
//		Before:        time.Now().AddDate(0, 0, -30),
//	})
//	if err != nil {
//		return err
//	}
//	files, err := it.Collect()
//	if err != nil {
//		return err
//	}
//
//	d := deleter.New(p, deleter.WithConfirmer(confirm))
//	results := d.Delete(ctx, files, false)
//
// Scanning is lazy: buckets and objects are fetched from the vendor
// only as results are consumed, so abandoning an iterator early stops
// all further API traffic.
package bucketsweep
