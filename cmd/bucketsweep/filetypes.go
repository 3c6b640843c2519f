package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bucketsweep/bucketsweep"
	"github.com/bucketsweep/bucketsweep/models"
	"github.com/bucketsweep/bucketsweep/scanner"
)

var (
	flagTypesPattern string
	flagTypesBefore  string
)

var fileTypesCmd = &cobra.Command{
	Use:   "file-types",
	Short: "Summarize object counts and sizes by file extension",
	Example: `  bucketsweep file-types --pattern '^test-' --before 2024-06-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := parseCutoff(flagTypesBefore, flagTimezone)
		if err != nil {
			return err
		}

		p, err := bucketsweep.NewProvider(flagProvider, flagRateLimit)
		if err != nil {
			return err
		}

		s := scanner.New(p)
		s.SetLogger(logger)
		it, err := s.ScanFileTypes(cmd.Context(), flagTypesPattern, before)
		if err != nil {
			return err
		}

		bucket := ""
		for {
			summary, ok := it.Next()
			if !ok {
				break
			}
			if summary.Bucket != bucket {
				bucket = summary.Bucket
				fmt.Printf("\n%s:\n", bucket)
			}
			fmt.Printf("  %-12s %8d files  %12s\n",
				summary.Extension, summary.FileCount, models.FormatSize(summary.TotalSize))
		}
		return it.Err()
	},
}

func init() {
	fileTypesCmd.Flags().StringVar(&flagTypesPattern, "pattern", "", "regex matched against bucket names")
	fileTypesCmd.Flags().StringVar(&flagTypesBefore, "before", "", "only count objects last modified before this date (YYYY-MM-DD)")
	fileTypesCmd.Flags().StringVar(&flagTimezone, "timezone", "UTC", "IANA timezone the cutoff date is interpreted in")

	cobra.CheckErr(fileTypesCmd.MarkFlagRequired("pattern"))
	cobra.CheckErr(fileTypesCmd.MarkFlagRequired("before"))

	rootCmd.AddCommand(fileTypesCmd)
}
