// Package app wires configuration, AWS clients and repositories into the services used by the
// function entry points and repctl.
package app

import (
	"context"
	"daily-rep/internal/config"
	"daily-rep/internal/dailyrep"
	"daily-rep/internal/notify"
	"daily-rep/internal/repository"
	"daily-rep/internal/utils"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/sirupsen/logrus"
)

type Stores struct {
	Profiles    utils.ProfileRepository
	Reps        utils.RepRepository
	Assignments utils.AssignmentRepository
	FocusAreas  utils.FocusAreaRepository
}

type App struct {
	Config *config.Config
	AWS    aws.Config
	Stores Stores
	logger *logrus.Entry
}

// New loads the AWS config and builds the DynamoDB backed stores.
func New(ctx context.Context, logger *logrus.Entry, cfg *config.Config) (*App, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	db := dynamodb.NewFromConfig(awsCfg)
	return &App{
		Config: cfg,
		AWS:    awsCfg,
		Stores: NewStores(logger, db, cfg),
		logger: logger,
	}, nil
}

func NewStores(logger *logrus.Entry, db utils.DynamoDbAPI, cfg *config.Config) Stores {
	return Stores{
		Profiles:    repository.NewProfileRepository(logger, db, cfg.ProfilesTableName),
		Reps:        repository.NewRepRepository(logger, db, cfg.RepsTableName),
		Assignments: repository.NewAssignmentRepository(logger, db, cfg.AssignmentsTableName),
		FocusAreas:  repository.NewFocusAreaRepository(logger, db, cfg.FocusAreasTableName),
	}
}

// Service builds the allocation service. withGenerator adds the LLM backed generator and fails
// when the provider is not configured.
func (a *App) Service(ctx context.Context, withGenerator bool) (*dailyrep.Service, error) {
	deps := dailyrep.Dependencies{
		Profiles:    a.Stores.Profiles,
		Reps:        a.Stores.Reps,
		Assignments: a.Stores.Assignments,
		FocusAreas:  a.Stores.FocusAreas,
		Selector:    dailyrep.NewSelector(nil),
		Notifier:    notify.NewLambdaNotifier(a.logger, lambda.NewFromConfig(a.AWS), a.Config.NotifyFunctionName),
	}

	if withGenerator {
		llm, err := NewTextGenerator(ctx, a.Config)
		if err != nil {
			return nil, err
		}
		gen, err := dailyrep.NewRepGenerator(a.logger, llm, a.Stores.Reps, a.Stores.Profiles, a.Config.Generator)
		if err != nil {
			return nil, fmt.Errorf("failed to create rep generator: %w", err)
		}
		deps.Generator = gen
	}

	return dailyrep.NewService(a.logger, deps, dailyrep.Options{Concurrency: a.Config.BatchConcurrency}), nil
}

// Dispatcher builds the notification dispatcher over every transport with credentials.
func (a *App) Dispatcher(ctx context.Context) (*notify.Dispatcher, error) {
	transports, err := Transports(ctx, a.logger, a.Config)
	if err != nil {
		return nil, err
	}
	return notify.NewDispatcher(a.logger, a.Stores.Profiles, transports...), nil
}

func NewTextGenerator(ctx context.Context, cfg *config.Config) (utils.TextGenerator, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return utils.NewGeminiClient(ctx, cfg.GeminiApiKey, cfg.Generator.Model)
	default:
		return utils.NewOpenAIClient(cfg.OpenaiApiKey, cfg.OpenaiBaseUrl, cfg.Generator.Model)
	}
}

func Transports(ctx context.Context, logger *logrus.Entry, cfg *config.Config) ([]notify.Transport, error) {
	var transports []notify.Transport

	if cfg.FirebaseProjectID != "" {
		client, err := notify.NewFCMClient(ctx, cfg.FirebaseProjectID)
		if err != nil {
			return nil, err
		}
		transports = append(transports, notify.NewFCMTransport(client))
	}

	if cfg.VapidPublicKey != "" && cfg.VapidPrivateKey != "" {
		transports = append(transports, notify.NewWebPushTransport(notify.VAPIDConfig{
			Subject:    cfg.VapidSubject,
			PublicKey:  cfg.VapidPublicKey,
			PrivateKey: cfg.VapidPrivateKey,
		}, nil))
	}

	if cfg.ChannelSecret != "" && cfg.ChannelToken != "" {
		bot, err := utils.NewLineBotClient(cfg.ChannelSecret, cfg.ChannelToken, "Daily Rep")
		if err != nil {
			return nil, err
		}
		transports = append(transports, notify.NewLineTransport(bot))
	}

	if len(transports) == 0 {
		logger.Warn("No push transport configured")
	}
	return transports, nil
}
