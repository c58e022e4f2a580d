// Package config loads docvoice settings from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the full docvoice configuration.
type Config struct {
	// Service selects the synthesis backend: elevenlabs, azure, edge.
	Service string `yaml:"service"`

	// DefaultVoice narrates segments before the first voice directive.
	DefaultVoice string `yaml:"default_voice"`

	Output   Output   `yaml:"output"`
	Eleven   Eleven   `yaml:"elevenlabs"`
	Azure    Azure    `yaml:"azure"`
	Server   Server   `yaml:"server"`
	Pipeline Pipeline `yaml:"pipeline"`

	// Filenames overrides generated output names per section title.
	Filenames map[string]string `yaml:"filenames,omitempty"`
}

// Output controls where and how audio lands on disk.
type Output struct {
	Directory string `yaml:"directory"`
	Format    string `yaml:"format"`  // mp3, wav, ogg, webm
	Quality   string `yaml:"quality"` // high, medium, low
}

// Eleven holds ElevenLabs credentials.
type Eleven struct {
	APIKey  string `yaml:"api_key"`
	ModelID string `yaml:"model_id"`
}

// Azure holds Azure Speech credentials.
type Azure struct {
	APIKey string `yaml:"api_key"`
	Region string `yaml:"region"`
}

// Server configures serve mode.
type Server struct {
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Pipeline configures job processing.
type Pipeline struct {
	WorkerCount        int           `yaml:"worker_count"`
	MaxQueueSize       int           `yaml:"max_queue_size"`
	SectionConcurrency int           `yaml:"section_concurrency"`
	MaxRetries         int           `yaml:"max_retries"`
	JobTTL             time.Duration `yaml:"job_ttl"`
}

// Load reads the YAML file at path (missing file yields defaults),
// then applies environment overrides and defaulting.
func Load(path string) (Config, error) {
	cfg := Config{
		Service: "elevenlabs",
		Output: Output{
			Directory: "output",
			Format:    "mp3",
			Quality:   "high",
		},
		Server: Server{
			Port:           "8070",
			MaxUploadBytes: 52428800, // 50MB
		},
		Pipeline: Pipeline{
			WorkerCount:        2,
			MaxQueueSize:       50,
			SectionConcurrency: 1,
			MaxRetries:         3,
			JobTTL:             time.Hour,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Service = envOr("DOCVOICE_SERVICE", cfg.Service)
	cfg.DefaultVoice = envOr("DOCVOICE_VOICE", cfg.DefaultVoice)
	cfg.Output.Directory = envOr("DOCVOICE_OUTPUT_DIR", cfg.Output.Directory)
	cfg.Output.Format = envOr("DOCVOICE_FORMAT", cfg.Output.Format)
	cfg.Output.Quality = envOr("DOCVOICE_QUALITY", cfg.Output.Quality)
	cfg.Eleven.APIKey = envOr("ELEVENLABS_API_KEY", cfg.Eleven.APIKey)
	cfg.Eleven.ModelID = envOr("ELEVENLABS_MODEL_ID", cfg.Eleven.ModelID)
	cfg.Azure.APIKey = envOr("AZURE_SPEECH_KEY", cfg.Azure.APIKey)
	cfg.Azure.Region = envOr("AZURE_SPEECH_REGION", cfg.Azure.Region)
	cfg.Server.Port = envOr("PORT", cfg.Server.Port)
	cfg.Server.APIKey = envOr("DOCVOICE_API_KEY", cfg.Server.APIKey)
	cfg.Pipeline.WorkerCount = envInt("WORKER_COUNT", cfg.Pipeline.WorkerCount)
	cfg.Pipeline.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.Pipeline.MaxQueueSize)
	cfg.Pipeline.SectionConcurrency = envInt("SECTION_CONCURRENCY", cfg.Pipeline.SectionConcurrency)
	cfg.Pipeline.JobTTL = envDuration("JOB_TTL", cfg.Pipeline.JobTTL)

	if cfg.Pipeline.WorkerCount <= 0 {
		cfg.Pipeline.WorkerCount = 2
	}
	if cfg.Pipeline.MaxQueueSize <= 0 {
		cfg.Pipeline.MaxQueueSize = 50
	}
	if cfg.Pipeline.SectionConcurrency <= 0 {
		cfg.Pipeline.SectionConcurrency = 1
	}
	if cfg.Pipeline.MaxRetries <= 0 {
		cfg.Pipeline.MaxRetries = 3
	}
	if cfg.Pipeline.JobTTL <= 0 {
		cfg.Pipeline.JobTTL = time.Hour
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 52428800
	}

	return cfg, nil
}

// Validate checks that the selected backend is usable.
func (c Config) Validate() error {
	switch c.Service {
	case "elevenlabs":
		if c.Eleven.APIKey == "" {
			return fmt.Errorf("elevenlabs.api_key (or ELEVENLABS_API_KEY) is required")
		}
	case "azure":
		if c.Azure.APIKey == "" || c.Azure.Region == "" {
			return fmt.Errorf("azure.api_key and azure.region (or AZURE_SPEECH_KEY / AZURE_SPEECH_REGION) are required")
		}
	case "edge":
		// Credential-free service.
	default:
		return fmt.Errorf("unknown service %q (want elevenlabs, azure, or edge)", c.Service)
	}
	if c.DefaultVoice == "" {
		return fmt.Errorf("default_voice (or DOCVOICE_VOICE) is required")
	}
	switch c.Output.Format {
	case "mp3", "wav", "ogg", "webm":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
