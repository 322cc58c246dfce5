package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging       LoggingConfig  `yaml:"logging"`
	MongoURI      string         `yaml:"mongo_uri"`
	MongoDBName   string         `yaml:"mongo_db_name"`
	GeminiModel   string         `yaml:"gemini_model"`
	GeminiBaseURL string         `yaml:"gemini_base_url"`
	Analysis      AnalysisConfig `yaml:"analysis"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AnalysisConfig controls the background batch-analysis pipeline.
type AnalysisConfig struct {
	// ChunkSize is the number of reviews sent to the model in one
	// classification call. 0 or less falls back to 1000.
	ChunkSize int `yaml:"chunk_size"`

	// SummarySampleSize bounds how many review texts are included in the
	// summarization prompt. 0 or less falls back to 50.
	SummarySampleSize int `yaml:"summary_sample_size"`

	// Workers is the number of concurrent batch-analysis workers.
	Workers int `yaml:"workers"`

	// QueueSize is the capacity of the pending-batch queue. Submissions
	// beyond this are rejected back to the caller.
	QueueSize int `yaml:"queue_size"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	c.applyDefaults()
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func (c *AppConfig) applyDefaults() {
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Analysis.ChunkSize <= 0 {
		c.Analysis.ChunkSize = 1000
	}
	if c.Analysis.SummarySampleSize <= 0 {
		c.Analysis.SummarySampleSize = 50
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.QueueSize <= 0 {
		c.Analysis.QueueSize = 64
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
