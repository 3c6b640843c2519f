package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bucketsweep/bucketsweep"
	"github.com/bucketsweep/bucketsweep/internal/validation"
	"github.com/bucketsweep/bucketsweep/models"
)

var (
	flagListPrefix    string
	flagBucketsFilter string
)

var listBucketsCmd = &cobra.Command{
	Use:   "list-buckets",
	Short: "List all accessible buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		re, err := validation.CompileBucketPattern(flagBucketsFilter)
		if err != nil {
			return err
		}

		p, err := bucketsweep.NewProvider(flagProvider, flagRateLimit)
		if err != nil {
			return err
		}

		it := p.ListBuckets(cmd.Context())
		count := 0
		for {
			b, ok := it.Next()
			if !ok {
				break
			}
			if !re.MatchString(b.Name) {
				continue
			}
			count++
			created := ""
			if !b.CreationDate.IsZero() {
				created = b.CreationDate.Format("2006-01-02")
			}
			fmt.Printf("%-50s %-16s %s\n", b.Name, b.Region, created)
		}
		if err := it.Err(); err != nil {
			return err
		}
		fmt.Printf("\n%d buckets\n", count)
		return nil
	},
}

var listFilesCmd = &cobra.Command{
	Use:   "list-files <bucket>",
	Short: "List the objects in a bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := bucketsweep.NewProvider(flagProvider, flagRateLimit)
		if err != nil {
			return err
		}

		it := p.ListFiles(cmd.Context(), args[0], flagListPrefix)
		count := 0
		var total int64
		for {
			f, ok := it.Next()
			if !ok {
				break
			}
			count++
			total += f.Size
			fmt.Printf("%-70s %12s  %s\n", f.Key, models.FormatSize(f.Size), f.LastModified.Format("2006-01-02 15:04:05"))
		}
		if err := it.Err(); err != nil {
			return err
		}
		fmt.Printf("\n%d objects, %s\n", count, models.FormatSize(total))
		return nil
	},
}

func init() {
	listBucketsCmd.Flags().StringVar(&flagBucketsFilter, "pattern", "", "only list buckets whose name matches this regex")
	listFilesCmd.Flags().StringVar(&flagListPrefix, "prefix", "", "only list keys under this prefix")

	rootCmd.AddCommand(listBucketsCmd)
	rootCmd.AddCommand(listFilesCmd)
}
