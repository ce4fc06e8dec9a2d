// Package catalog loads the pre-authored focus areas and reps into storage.
package catalog

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/utils"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// repNamespace scopes the name-based ids of catalog reps so reseeding yields the same ids.
var repNamespace = uuid.MustParse("8f6d0c3e-2b7a-4a51-9d0e-5c1b7e3f9a42")

type File struct {
	FocusAreas []Area `yaml:"focus_areas"`
}

type Area struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	ExampleReps []string `yaml:"example_reps"`
	Reps        []Rep    `yaml:"reps"`
}

type Rep struct {
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	DifficultyLevel string `yaml:"difficulty_level"`
	EstimatedTime   int    `yaml:"estimated_time"`
	Format          string `yaml:"format"`
}

func Default() []byte {
	return defaultCatalog
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing catalog yaml: %w", err)
	}
	if len(f.FocusAreas) == 0 {
		return nil, errors.New("catalog has no focus areas")
	}

	var errs []error
	seen := map[string]bool{}
	for i, a := range f.FocusAreas {
		if strings.TrimSpace(a.Title) == "" {
			errs = append(errs, fmt.Errorf("focus area %d has no title", i))
			continue
		}
		id := a.ID
		if id == "" {
			id = models.FocusAreaID(a.Title)
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("duplicate focus area %q", id))
		}
		seen[id] = true
		for j, r := range a.Reps {
			if strings.TrimSpace(r.Title) == "" {
				errs = append(errs, fmt.Errorf("%s: rep %d has no title", id, j))
			}
			if r.DifficultyLevel != "" {
				if _, ok := models.ParseLevel(r.DifficultyLevel); !ok {
					errs = append(errs, fmt.Errorf("%s: rep %q has unknown level %q", id, r.Title, r.DifficultyLevel))
				}
			}
			if r.EstimatedTime < 0 {
				errs = append(errs, fmt.Errorf("%s: rep %q has negative estimated_time", id, r.Title))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &f, nil
}

// Build converts the document into storage models. Rep ids are derived from the focus area and
// title.
func (f *File) Build() ([]models.FocusArea, []models.Rep) {
	areas := make([]models.FocusArea, 0, len(f.FocusAreas))
	var reps []models.Rep
	for _, a := range f.FocusAreas {
		area := models.FocusArea{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			ExampleReps: a.ExampleReps,
		}
		if area.ID == "" {
			area.ID = models.FocusAreaID(a.Title)
		}
		areas = append(areas, area)

		for _, r := range a.Reps {
			level, _ := models.ParseLevel(r.DifficultyLevel)
			minutes := r.EstimatedTime
			if minutes == 0 {
				minutes = models.DefaultEstimatedMinutes
			}
			reps = append(reps, models.Rep{
				ID:               RepID(area.ID, r.Title),
				Title:            r.Title,
				Description:      r.Description,
				DifficultyLevel:  level,
				EstimatedMinutes: minutes,
				FocusAreaID:      area.ID,
				Format:           r.Format,
			})
		}
	}
	return areas, reps
}

func RepID(focusAreaID, title string) string {
	return uuid.NewSHA1(repNamespace, []byte(focusAreaID+"/"+slug.Make(title))).String()
}

// Load reads a seed document from a local path or an s3://bucket/key URL.
func Load(ctx context.Context, source string, client utils.S3API) ([]byte, error) {
	if !strings.HasPrefix(source, "s3://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		return data, nil
	}

	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("catalog url %q must be s3://bucket/key", source)
	}
	if client == nil {
		return nil, errors.New("s3 client is required for s3:// sources")
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog object: %w", err)
	}
	return data, nil
}

type Stats struct {
	FocusAreas int `json:"focusAreas"`
	Created    int `json:"created"`
	Existing   int `json:"existing"`
}

type Seeder struct {
	logger     *logrus.Entry
	focusAreas utils.FocusAreaRepository
	reps       utils.RepRepository
}

func NewSeeder(logger *logrus.Entry, focusAreas utils.FocusAreaRepository, reps utils.RepRepository) *Seeder {
	return &Seeder{
		logger:     logger,
		focusAreas: focusAreas,
		reps:       reps,
	}
}

// Seed writes every focus area and every rep that is not stored yet. Reps are immutable, so
// existing ones are left alone.
func (s *Seeder) Seed(ctx context.Context, f *File) (Stats, error) {
	areas, reps := f.Build()
	var stats Stats

	for i := range areas {
		if err := s.focusAreas.SaveFocusArea(ctx, &areas[i]); err != nil {
			return stats, err
		}
		stats.FocusAreas++
	}

	for i := range reps {
		err := s.reps.SaveRep(ctx, &reps[i])
		var conditionFailed *types.ConditionalCheckFailedException
		switch {
		case errors.As(err, &conditionFailed):
			stats.Existing++
		case err != nil:
			return stats, err
		default:
			stats.Created++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"focusAreas": stats.FocusAreas,
		"created":    stats.Created,
		"existing":   stats.Existing,
	}).Info("Catalog seeded")
	return stats, nil
}
