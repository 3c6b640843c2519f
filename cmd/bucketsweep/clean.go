package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bucketsweep/bucketsweep"
	"github.com/bucketsweep/bucketsweep/deleter"
	"github.com/bucketsweep/bucketsweep/models"
	"github.com/bucketsweep/bucketsweep/scanner"
)

var (
	flagBucketPattern string
	flagFilePattern   string
	flagBefore        string
	flagTimezone      string
	flagDryRun        bool
	flagNoConfirm     bool
	flagBatchSize     int
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete objects older than a cutoff date",
	Example: `  bucketsweep clean --bucket-pattern '^test-' --file-pattern '*.log' --before 2024-01-01
  bucketsweep clean -p tencent --bucket-pattern backups --file-pattern '*' --before 2024-06-01 --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := parseCutoff(flagBefore, flagTimezone)
		if err != nil {
			return err
		}

		p, err := bucketsweep.NewProvider(flagProvider, flagRateLimit)
		if err != nil {
			return err
		}

		s := scanner.New(p)
		s.SetLogger(logger)
		it, err := s.Scan(cmd.Context(), models.DeletionFilter{
			BucketPattern: flagBucketPattern,
			FilePattern:   flagFilePattern,
			Before:        before,
			Provider:      p.Name(),
		})
		if err != nil {
			return err
		}

		files, err := it.Collect()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No matching files found.")
			return nil
		}

		d := deleter.New(p,
			deleter.WithBatchSize(flagBatchSize),
			deleter.WithDryRun(flagDryRun),
			deleter.WithLogger(logger),
			deleter.WithConfirmer(stdinConfirmer{}),
		)

		results := d.Delete(cmd.Context(), files, flagNoConfirm)

		success, failed := 0, 0
		for {
			r, ok := results.Next()
			if !ok {
				break
			}
			if r.Success {
				success++
				if flagDryRun {
					fmt.Printf("would delete %s/%s (%s)\n", r.File.Bucket, r.File.Key, models.FormatSize(r.File.Size))
				}
			} else {
				failed++
				fmt.Fprintf(os.Stderr, "failed %s/%s: %s\n", r.File.Bucket, r.File.Key, r.Error)
			}
		}

		if results.Cancelled() {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		if flagDryRun {
			fmt.Printf("Dry run: %d files would be deleted.\n", success)
			return nil
		}
		fmt.Printf("Deleted %d files, %d failed.\n", success, failed)
		if failed > 0 {
			return fmt.Errorf("%d deletions failed", failed)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVar(&flagBucketPattern, "bucket-pattern", "", "regex matched against bucket names")
	cleanCmd.Flags().StringVar(&flagFilePattern, "file-pattern", "", "glob matched against object keys")
	cleanCmd.Flags().StringVar(&flagBefore, "before", "", "delete objects last modified before this date (YYYY-MM-DD)")
	cleanCmd.Flags().StringVar(&flagTimezone, "timezone", "UTC", "IANA timezone the cutoff date is interpreted in")
	cleanCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report what would be deleted without deleting")
	cleanCmd.Flags().BoolVar(&flagNoConfirm, "no-confirm", false, "skip the interactive confirmation prompt")
	cleanCmd.Flags().IntVar(&flagBatchSize, "batch-size", 100, "keys per delete request (max 1000)")

	cobra.CheckErr(cleanCmd.MarkFlagRequired("bucket-pattern"))
	cobra.CheckErr(cleanCmd.MarkFlagRequired("file-pattern"))
	cobra.CheckErr(cleanCmd.MarkFlagRequired("before"))

	rootCmd.AddCommand(cleanCmd)
}

// parseCutoff interprets a YYYY-MM-DD date at midnight in the given
// timezone.
func parseCutoff(date, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	t, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
	}
	return t, nil
}

// stdinConfirmer shows the pending deletion summary and asks for a
// yes/no answer on stdin. Anything but "y" or "yes" declines.
type stdinConfirmer struct{}

func (stdinConfirmer) Confirm(summary models.DeletionSummary) bool {
	fmt.Printf("\nAbout to delete %d files (%s) from %s:\n",
		summary.TotalFiles, models.FormatSize(summary.TotalSize), summary.Provider)
	for bucket, count := range summary.FilesByBucket {
		fmt.Printf("  %-40s %6d files  %s\n", bucket, count, models.FormatSize(summary.SizeByBucket[bucket]))
	}
	fmt.Print("\nProceed? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
