package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/jira"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultJQL selects the security incidents of the default workflow.
const DefaultJQL = `project = SECURITY AND issuetype = "Security Incident"`

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Jira                jira.Config
	JQL                 string
	DataPath            string
	LogDir              string
	CacheDir            string
	OutputDir           string
	Workflow            Workflow
	EmptyHistoryPolicy  cfd.Policy
	ChangelogWorkers    int
	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return FromEnv(exeDir)
}

// FromEnv builds the configuration from the process environment only.
// exeDir is the DATA_PATH fallback; empty means the working directory.
func FromEnv(exeDir string) (*AppConfig, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")
	outputDir := filepath.Join(dataPath, "output")

	// Ensure directories exist
	for _, dir := range []string{logDir, cacheDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create directory")
		}
	}

	policy, err := cfd.ParsePolicy(getEnv("EMPTY_HISTORY_POLICY", string(cfd.PolicyFail)))
	if err != nil {
		return nil, err
	}

	workflow := DefaultWorkflow()
	if path := getEnv("WORKFLOW_FILE", ""); path != "" {
		workflow, err = LoadWorkflow(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Int("statuses", len(workflow.Statuses)).Msg("Loaded workflow file")
	}

	delayMs := getEnvInt("JIRA_REQUEST_DELAY_MS", 0)

	cfg := &AppConfig{
		Jira: jira.Config{
			BaseURL:      getEnv("JIRA_URL", ""),
			Username:     getEnv("JIRA_USERNAME", ""),
			Token:        getEnv("JIRA_TOKEN", ""),
			RequestDelay: time.Duration(delayMs) * time.Millisecond,
		},
		JQL:                 getEnv("JIRA_JQL", DefaultJQL),
		DataPath:            dataPath,
		LogDir:              logDir,
		CacheDir:            cacheDir,
		OutputDir:           outputDir,
		Workflow:            workflow,
		EmptyHistoryPolicy:  policy,
		ChangelogWorkers:    getEnvInt("CHANGELOG_WORKERS", 4),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
