package main

import (
	"context"
	"daily-rep/internal/catalog"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
)

var (
	seedSource string
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load focus areas and catalog reps",
	Long: `Load focus areas and catalog reps from a YAML document.

--file accepts a local path or an s3://bucket/key URL. Without it the built-in catalog is
used. Reps that already exist are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}

		data := catalog.Default()
		if seedSource != "" {
			if data, err = catalog.Load(ctx, seedSource, s3.NewFromConfig(a.AWS)); err != nil {
				return err
			}
		}

		file, err := catalog.Parse(data)
		if err != nil {
			return err
		}
		if seedDryRun {
			areas, reps := file.Build()
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"focusAreas": areas,
				"reps":       reps,
			})
		}

		stats, err := catalog.NewSeeder(logger, a.Stores.FocusAreas, a.Stores.Reps).Seed(ctx, file)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stats)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedSource, "file", "f", "", "Catalog YAML path or s3://bucket/key")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Print the parsed catalog without writing")
}
