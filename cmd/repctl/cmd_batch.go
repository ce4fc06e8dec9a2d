package main

import (
	"context"
	"daily-rep/internal/dailyrep"

	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign today's catalog rep to every user with focus areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, false, (*dailyrep.Service).AssignDaily)
	},
}

var autogenCmd = &cobra.Command{
	Use:   "autogen",
	Short: "Generate reps for users whose delivery hour is the current UTC hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, true, (*dailyrep.Service).AutoGenerate)
	},
}

var (
	generateUser     string
	generateStrategy string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Allocate today's rep for a single user",
	Long: `Allocate today's rep for one user, replacing any rep already assigned today.

The user goes through the same eligibility gate as the app.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := dailyrep.ParseStrategy(generateStrategy)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		service, err := a.Service(ctx, strategy == dailyrep.StrategyGenerative)
		if err != nil {
			return err
		}

		result, err := service.Assign(ctx, generateUser, strategy)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateUser, "user", "", "User id (required)")
	generateCmd.Flags().StringVar(&generateStrategy, "strategy", string(dailyrep.StrategyGenerative), "catalog or generative")
	_ = generateCmd.MarkFlagRequired("user")
}

func runBatch(cmd *cobra.Command, withGenerator bool, run func(*dailyrep.Service, context.Context) (*dailyrep.BatchReport, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	service, err := a.Service(ctx, withGenerator)
	if err != nil {
		return err
	}

	report, err := run(service, ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
