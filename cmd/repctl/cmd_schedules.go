package main

import (
	"context"
	"daily-rep/internal/schedule"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/spf13/cobra"
)

var (
	scheduleRoleArn    string
	scheduleAssignArn  string
	scheduleAutogenArn string
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Manage the EventBridge schedules of the batch functions",
}

var schedulesInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Create or replace the daily assign and hourly auto-generate schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newScheduleManager(cmd.Context())
		if err != nil {
			return err
		}
		defs := schedule.Defaults(scheduleAssignArn, scheduleAutogenArn)
		if err := m.Install(cmd.Context(), defs); err != nil {
			return err
		}
		for _, d := range defs {
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s %s\n", d.Name, d.Expression)
		}
		return nil
	},
}

var schedulesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the batch schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newScheduleManager(cmd.Context())
		if err != nil {
			return err
		}
		return m.Remove(cmd.Context(), schedule.AssignName, schedule.AutogenName)
	},
}

func init() {
	schedulesInstallCmd.Flags().StringVar(&scheduleRoleArn, "role-arn", "", "IAM role the scheduler assumes (required)")
	schedulesInstallCmd.Flags().StringVar(&scheduleAssignArn, "assign-arn", "", "ARN of the daily-rep-assign function (required)")
	schedulesInstallCmd.Flags().StringVar(&scheduleAutogenArn, "autogen-arn", "", "ARN of the daily-rep-autogen function (required)")
	_ = schedulesInstallCmd.MarkFlagRequired("role-arn")
	_ = schedulesInstallCmd.MarkFlagRequired("assign-arn")
	_ = schedulesInstallCmd.MarkFlagRequired("autogen-arn")

	schedulesCmd.AddCommand(schedulesInstallCmd)
	schedulesCmd.AddCommand(schedulesRemoveCmd)
}

func newScheduleManager(ctx context.Context) (*schedule.Manager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return schedule.NewManager(logger, scheduler.NewFromConfig(cfg), scheduleRoleArn), nil
}
