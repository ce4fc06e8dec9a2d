// Package schedule installs the EventBridge Scheduler triggers for the batch functions and
// exposes the same timetable for the in-process runner.
package schedule

import (
	"context"
	"daily-rep/internal/utils"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"
	"github.com/sirupsen/logrus"
)

const (
	DefaultGroup = "default"

	AssignName  = "daily-rep-assign"
	AutogenName = "daily-rep-autogen"

	// Five-field crontab forms used by the in-process runner.
	AssignCron  = "5 0 * * *"
	AutogenCron = "0 * * * *"
)

// Definition is one recurring trigger of a function.
type Definition struct {
	Name        string
	Expression  string
	FunctionArn string
	Description string
}

// Defaults returns the daily assign trigger at 00:05 UTC and the hourly auto-generate trigger.
func Defaults(assignArn, autogenArn string) []Definition {
	return []Definition{
		{
			Name:        AssignName,
			Expression:  EventBridgeExpression(AssignCron),
			FunctionArn: assignArn,
			Description: "Assign a catalog rep to every user with focus areas",
		},
		{
			Name:        AutogenName,
			Expression:  EventBridgeExpression(AutogenCron),
			FunctionArn: autogenArn,
			Description: "Generate reps for users whose delivery hour has come",
		},
	}
}

// EventBridgeExpression converts a five-field crontab with a wildcard day-of-week into the
// six-field cron() form EventBridge expects.
func EventBridgeExpression(crontab string) string {
	var minute, hour, dom, month, dow string
	if _, err := fmt.Sscanf(crontab, "%s %s %s %s %s", &minute, &hour, &dom, &month, &dow); err != nil {
		return ""
	}
	return fmt.Sprintf("cron(%s %s %s %s ? *)", minute, hour, dom, month)
}

type Manager struct {
	logger  *logrus.Entry
	client  utils.SchedulerAPI
	roleArn string
	group   string
}

func NewManager(logger *logrus.Entry, client utils.SchedulerAPI, roleArn string) *Manager {
	return &Manager{
		logger:  logger,
		client:  client,
		roleArn: roleArn,
		group:   DefaultGroup,
	}
}

// Install replaces each schedule with the given definition.
func (m *Manager) Install(ctx context.Context, defs []Definition) error {
	if m.roleArn == "" {
		return errors.New("scheduler role arn is required")
	}
	for _, def := range defs {
		if def.FunctionArn == "" {
			return fmt.Errorf("schedule %s has no target function", def.Name)
		}
		if err := m.delete(ctx, def.Name); err != nil {
			return err
		}

		m.logger.WithFields(logrus.Fields{
			"scheduleName": def.Name,
			"expression":   def.Expression,
			"groupName":    m.group,
		}).Info("Creating EventBridge schedule")

		out, err := m.client.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
			Name:      aws.String(def.Name),
			GroupName: aws.String(m.group),
			FlexibleTimeWindow: &types.FlexibleTimeWindow{
				Mode: types.FlexibleTimeWindowModeOff,
			},
			ScheduleExpression:         aws.String(def.Expression),
			ScheduleExpressionTimezone: aws.String("UTC"),
			Description:                aws.String(def.Description),
			Target: &types.Target{
				Arn:     aws.String(def.FunctionArn),
				RoleArn: aws.String(m.roleArn),
				Input:   aws.String("{}"),
			},
		})
		if err != nil {
			m.logger.WithError(err).Error("Failed to create EventBridge schedule")
			return fmt.Errorf("failed to create schedule %s: %w", def.Name, err)
		}

		m.logger.WithFields(logrus.Fields{
			"scheduleName": def.Name,
			"scheduleArn":  aws.ToString(out.ScheduleArn),
		}).Info("Successfully created EventBridge schedule")
	}
	return nil
}

// Remove deletes the named schedules. Missing schedules are ignored.
func (m *Manager) Remove(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := m.delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) delete(ctx context.Context, name string) error {
	_, err := m.client.GetSchedule(ctx, &scheduler.GetScheduleInput{
		Name:      aws.String(name),
		GroupName: aws.String(m.group),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			m.logger.WithField("scheduleName", name).Info("No existing schedule found")
			return nil
		}
		return fmt.Errorf("failed to get schedule %s: %w", name, err)
	}

	m.logger.WithField("scheduleName", name).Info("Deleting existing schedule")
	_, err = m.client.DeleteSchedule(ctx, &scheduler.DeleteScheduleInput{
		Name:      aws.String(name),
		GroupName: aws.String(m.group),
	})
	if err != nil {
		m.logger.WithError(err).Error("Failed to delete existing schedule")
		return fmt.Errorf("failed to delete existing schedule: %w", err)
	}
	return nil
}
