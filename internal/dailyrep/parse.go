package dailyrep

import (
	"context"
	"daily-rep/internal/models"
	"daily-rep/internal/reperr"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/qri-io/jsonschema"
)

var (
	fencedJSONBlock = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")
	fencedBlock     = regexp.MustCompile("```\\n([\\s\\S]*?)\\n```")
	leadingNumber   = regexp.MustCompile(`\d+(\.\d+)?`)
)

const generatedRepSchema = `{
  "type": "object",
  "required": ["title", "description"],
  "properties": {
    "title": {"type": "string", "minLength": 1, "maxLength": 200},
    "description": {"type": "string", "minLength": 1},
    "difficulty_level": {"type": "string"},
    "estimated_time": {"type": ["number", "string"]},
    "focus_area": {"type": "string"}
  }
}`

// generatedRep is the object the model is asked to return.
type generatedRep struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DifficultyLevel string          `json:"difficulty_level"`
	EstimatedTime   json.RawMessage `json:"estimated_time"`
	FocusArea       string          `json:"focus_area"`
}

type repParser struct {
	schema *jsonschema.Schema
}

func newRepParser() (*repParser, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(generatedRepSchema), rs); err != nil {
		return nil, fmt.Errorf("invalid generated rep schema: %w", err)
	}
	return &repParser{schema: rs}, nil
}

// extractJSON returns the JSON text of a model reply: the body of a ```json or ``` fenced
// block when there is one, otherwise the trimmed reply. Replies that wrap a bare object in
// prose are cut to the outermost braces.
func extractJSON(text string) string {
	if m := fencedJSONBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	raw := strings.TrimSpace(text)
	if json.Valid([]byte(raw)) {
		return raw
	}
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last < first {
		return raw
	}
	return raw[first : last+1]
}

// Parse turns a model reply into an unsaved Rep. Missing fields fall back to the profile's
// level, the default duration and the user's first focus area.
func (p *repParser) Parse(ctx context.Context, text string, profile *models.UserProfile, catalog *models.FocusAreaCatalog) (*models.Rep, error) {
	if strings.TrimSpace(text) == "" {
		return nil, reperr.New(reperr.KindInvalidGenerationResponse, "empty response")
	}

	body := []byte(extractJSON(text))
	keyErrs, err := p.schema.ValidateBytes(ctx, body)
	if err != nil {
		return nil, reperr.Wrap(reperr.KindInvalidGenerationResponse, err, "response is not a JSON object")
	}
	if len(keyErrs) > 0 {
		var sb strings.Builder
		for _, ke := range keyErrs {
			sb.WriteString(ke.PropertyPath)
			sb.WriteString(" ")
			sb.WriteString(ke.Message)
			sb.WriteString("; ")
		}
		return nil, reperr.New(reperr.KindInvalidGenerationResponse, "response does not match schema: %s", sb.String())
	}

	var g generatedRep
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, reperr.Wrap(reperr.KindInvalidGenerationResponse, err, "failed to decode response")
	}
	if strings.TrimSpace(g.Title) == "" || strings.TrimSpace(g.Description) == "" {
		return nil, reperr.New(reperr.KindInvalidGenerationResponse, "title and description are required")
	}

	level, ok := models.ParseLevel(g.DifficultyLevel)
	if !ok {
		level = profile.Level()
	}

	rep := &models.Rep{
		Title:            strings.TrimSpace(g.Title),
		Description:      strings.TrimSpace(g.Description),
		DifficultyLevel:  level,
		EstimatedMinutes: parseMinutes(g.EstimatedTime),
		FocusAreaID:      resolveFocusArea(g.FocusArea, profile, catalog),
		Format:           models.FormatAIGenerated,
	}
	return rep, nil
}

// parseMinutes accepts 10, 10.5, "10" or "10 minutes".
func parseMinutes(raw json.RawMessage) int {
	if len(raw) == 0 {
		return models.DefaultEstimatedMinutes
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.DefaultEstimatedMinutes
		}
		m := leadingNumber.FindString(s)
		if m == "" {
			return models.DefaultEstimatedMinutes
		}
		if n, err = strconv.ParseFloat(m, 64); err != nil {
			return models.DefaultEstimatedMinutes
		}
	}

	minutes := int(math.Round(n))
	if minutes <= 0 {
		return models.DefaultEstimatedMinutes
	}
	return minutes
}

// resolveFocusArea keeps the model's focus area only when it is one the user selected.
func resolveFocusArea(value string, profile *models.UserProfile, catalog *models.FocusAreaCatalog) string {
	if catalog != nil && value != "" {
		if id, ok := catalog.Resolve(value); ok && profile.HasFocusArea(id) {
			return id
		}
	}
	if profile.HasFocusArea(value) {
		return value
	}
	if len(profile.FocusAreas) > 0 {
		return profile.FocusAreas[0]
	}
	return models.FocusAreaID(value)
}
