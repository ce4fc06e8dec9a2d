package dailyrep

import (
	"bytes"
	"context"
	"daily-rep/internal/config"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"daily-rep/internal/utils"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const notSpecified = "Not specified"

// promptData is the view of a profile the prompt templates render.
type promptData struct {
	Name       string
	Age        string
	Gender     string
	LifeStage  string
	JobTitle   string
	Level      models.Level
	FocusAreas string
	Goals      string
	RepStyle   string
	History    string
}

// RepGenerator implements the generative strategy: it asks the text generator for a new rep,
// checks it against the user's history and stores it.
type RepGenerator struct {
	logger   *logrus.Entry
	llm      utils.TextGenerator
	reps     utils.RepRepository
	profiles utils.ProfileRepository
	cfg      config.Generator
	system   *template.Template
	user     *template.Template
	parser   *repParser
}

func NewRepGenerator(logger *logrus.Entry, llm utils.TextGenerator, reps utils.RepRepository, profiles utils.ProfileRepository, cfg config.Generator) (*RepGenerator, error) {
	if llm == nil {
		return nil, errors.New("text generator is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}

	system, err := template.New("system").Option("missingkey=error").Parse(cfg.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse system prompt: %w", err)
	}
	user, err := template.New("user").Option("missingkey=error").Parse(cfg.UserPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt: %w", err)
	}
	parser, err := newRepParser()
	if err != nil {
		return nil, err
	}

	return &RepGenerator{
		logger:   logger,
		llm:      llm,
		reps:     reps,
		profiles: profiles,
		cfg:      cfg,
		system:   system,
		user:     user,
		parser:   parser,
	}, nil
}

// HistoryWindow is the number of most recent reps shown to the model.
func (g *RepGenerator) HistoryWindow() int {
	return g.cfg.HistoryWindow
}

// BuildPrompt renders the request for profile. history is newest first and is cut to the
// configured window.
func (g *RepGenerator) BuildPrompt(profile *models.UserProfile, history []models.Rep, catalog *models.FocusAreaCatalog) (utils.GenerationRequest, error) {
	if len(history) > g.cfg.HistoryWindow {
		history = history[:g.cfg.HistoryWindow]
	}

	focus := profile.FocusAreas
	if catalog != nil {
		focus = catalog.Titles(profile.FocusAreas)
	}
	data := promptData{
		Name:       orDefault(profile.Name, "there"),
		Age:        notSpecified,
		Gender:     orDefault(profile.Gender, notSpecified),
		LifeStage:  orDefault(profile.LifeStage, notSpecified),
		JobTitle:   orDefault(profile.JobTitle, notSpecified),
		Level:      profile.Level(),
		FocusAreas: orDefault(strings.Join(focus, ", "), "General development"),
		Goals:      orDefault(profile.Goals, "Personal growth and improvement"),
		RepStyle:   orDefault(profile.RepStyle, "Quick [5-10 min]"),
		History:    models.FormatRepHistory(history),
	}
	if profile.Age > 0 {
		data.Age = strconv.Itoa(profile.Age)
	}

	var sys, usr bytes.Buffer
	if err := g.system.Execute(&sys, data); err != nil {
		return utils.GenerationRequest{}, fmt.Errorf("failed to render system prompt: %w", err)
	}
	if err := g.user.Execute(&usr, data); err != nil {
		return utils.GenerationRequest{}, fmt.Errorf("failed to render user prompt: %w", err)
	}

	return utils.GenerationRequest{
		SystemPrompt: sys.String(),
		UserPrompt:   usr.String(),
		Temperature:  g.cfg.Temperature,
	}, nil
}

// Generate produces and stores a new rep for profile. A reply that does not parse, or whose
// title repeats an earlier rep, is retried up to the configured attempts; if every attempt
// repeats, the last parsed rep is kept. Transport failures are not retried here.
func (g *RepGenerator) Generate(ctx context.Context, profile *models.UserProfile, history []models.Rep, catalog *models.FocusAreaCatalog) (*models.Rep, error) {
	logger := g.logger.WithField("userId", profile.UserID)

	req, err := g.BuildPrompt(profile, history, catalog)
	if err != nil {
		return nil, err
	}

	filter, err := g.profiles.GetTitleFilter(ctx, profile.UserID)
	if err != nil {
		logger.WithError(err).Warn("Failed to load title filter, continuing without it")
		filter = models.NewTitleFilter(profile.UserID)
	}

	seen := make(map[string]bool, len(history))
	for _, h := range history {
		seen[strings.ToLower(h.Title)] = true
	}

	var rep *models.Rep
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		text, err := g.call(ctx, req)
		if err != nil {
			return nil, err
		}

		candidate, err := g.parser.Parse(ctx, text, profile, catalog)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"attempt": attempt,
				"raw":     text,
			}).Warn("Failed to parse generated rep")
			lastErr = err
			continue
		}

		rep = candidate
		if !seen[strings.ToLower(candidate.Title)] && !filter.Contains(candidate.Title) {
			break
		}
		logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"title":   candidate.Title,
		}).Warn("Generated rep repeats an earlier title")
	}
	if rep == nil {
		return nil, lastErr
	}

	rep.ID = uuid.NewString()
	if err := g.reps.SaveRep(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to save generated rep: %w", err)
	}

	filter.Add(rep.Title)
	if err := g.profiles.SaveTitleFilter(ctx, filter); err != nil {
		logger.WithError(err).Warn("Failed to update title filter")
	}

	logger.WithFields(logrus.Fields{
		"repId": rep.ID,
		"title": rep.Title,
	}).Info("Generated new rep")
	return rep, nil
}

func (g *RepGenerator) call(ctx context.Context, req utils.GenerationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout())
	defer cancel()

	text, err := g.llm.Generate(ctx, req)
	if err != nil {
		if reperr.KindOf(err) == "" && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", reperr.Wrap(reperr.KindGenerationTimeout, err, "text generation timed out")
		}
		return "", fmt.Errorf("failed to generate rep: %w", err)
	}
	return text, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
