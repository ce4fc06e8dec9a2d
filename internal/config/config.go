package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

//go:embed prompt/rep_generator.yaml
var repGeneratorYAML []byte

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	minGenerationTimeout = 15 * time.Second
	maxGenerationTimeout = 30 * time.Second
)

// Generator tunes the generative strategy.
type Generator struct {
	Model          string  `yaml:"model"`
	Temperature    float32 `yaml:"temperature"`
	HistoryWindow  int     `yaml:"history_window"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxAttempts    int     `yaml:"max_attempts"`
	SystemPrompt   string  `yaml:"system_prompt"`
	UserPrompt     string  `yaml:"user_prompt"`
}

func (g Generator) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type Config struct {
	ProfilesTableName    string
	RepsTableName        string
	AssignmentsTableName string
	FocusAreasTableName  string

	LLMProvider   string
	OpenaiBaseUrl string
	OpenaiApiKey  string
	GeminiApiKey  string
	Generator     Generator

	NotifyFunctionName string
	BatchConcurrency   int
	JWTSecret          string

	FirebaseProjectID string
	VapidPublicKey    string
	VapidPrivateKey   string
	VapidSubject      string
	ChannelSecret     string
	ChannelToken      string
}

// Load reads a local .env when present, then the environment. Table names are required;
// everything else has a default or is checked by the component that needs it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		LLMProvider:        getEnv("LLM_PROVIDER", ProviderOpenAI),
		OpenaiBaseUrl:      os.Getenv("OPENAI_BASE_URL"),
		OpenaiApiKey:       os.Getenv("OPENAI_API_KEY"),
		GeminiApiKey:       os.Getenv("GEMINI_API_KEY"),
		NotifyFunctionName: getEnv("NOTIFY_FUNCTION_NAME", "daily-rep-notify"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		FirebaseProjectID:  os.Getenv("FIREBASE_PROJECT_ID"),
		VapidPublicKey:     os.Getenv("VAPID_PUBLIC_KEY"),
		VapidPrivateKey:    os.Getenv("VAPID_PRIVATE_KEY"),
		VapidSubject:       getEnv("VAPID_SUBJECT", "mailto:support@dailyrep.app"),
		ChannelSecret:      os.Getenv("CHANNEL_SECRET"),
		ChannelToken:       os.Getenv("CHANNEL_TOKEN"),
	}

	var err error
	required := []struct {
		key string
		dst *string
	}{
		{"PROFILES_TABLE_NAME", &cfg.ProfilesTableName},
		{"REPS_TABLE_NAME", &cfg.RepsTableName},
		{"ASSIGNMENTS_TABLE_NAME", &cfg.AssignmentsTableName},
		{"FOCUS_AREAS_TABLE_NAME", &cfg.FocusAreasTableName},
	}
	for _, r := range required {
		*r.dst = os.Getenv(r.key)
		if *r.dst == "" {
			return nil, fmt.Errorf("%s is not set", r.key)
		}
	}

	if cfg.BatchConcurrency, err = getEnvInt("BATCH_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.BatchConcurrency < 1 {
		return nil, errors.New("BATCH_CONCURRENCY must be positive")
	}

	if cfg.Generator, err = LoadGenerator(os.Getenv("GENERATOR_CONFIG_PATH")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireLLM checks the settings of the configured text-generation provider.
func (c *Config) RequireLLM() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenaiApiKey == "" {
			return errors.New("OPENAI_API_KEY is not set")
		}
	case ProviderGemini:
		if c.GeminiApiKey == "" {
			return errors.New("GEMINI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

// LoadGenerator parses the embedded generator document, or the file at path when given, and
// applies environment overrides.
func LoadGenerator(path string) (Generator, error) {
	data := repGeneratorYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Generator{}, fmt.Errorf("failed to read generator config: %w", err)
		}
		data = b
	}

	var g Generator
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Generator{}, fmt.Errorf("error parsing generator yaml: %w", err)
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		g.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return Generator{}, fmt.Errorf("LLM_TEMPERATURE: %w", err)
		}
		g.Temperature = float32(f)
	}
	var err error
	if g.HistoryWindow, err = getEnvInt("HISTORY_WINDOW", g.HistoryWindow); err != nil {
		return Generator{}, err
	}
	if g.TimeoutSeconds, err = getEnvInt("GENERATION_TIMEOUT_SECONDS", g.TimeoutSeconds); err != nil {
		return Generator{}, err
	}

	return g, g.Validate()
}

func (g Generator) Validate() error {
	if g.SystemPrompt == "" || g.UserPrompt == "" {
		return errors.New("generator prompts must not be empty")
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", g.Temperature)
	}
	if g.HistoryWindow < 0 {
		return errors.New("history_window must not be negative")
	}
	if t := g.Timeout(); t < minGenerationTimeout || t > maxGenerationTimeout {
		return fmt.Errorf("generation timeout %s out of range [%s, %s]", t, minGenerationTimeout, maxGenerationTimeout)
	}
	if g.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
