package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Workspace WorkspaceConfig
	Drive     DriveConfig
	Redis     RedisConfig
	App       AppConfig
}

type ServerConfig struct {
	Port          string
	WebhookSecret string
}

type WorkspaceConfig struct {
	Token              string
	BaseURL            string
	ProjectsDatabaseID string
	TitleProperty      string
	FolderURLProperty  string
	ClientRelation     string
	ClientNameProperty string
	SequenceRollup     string
	TemplateBlockID    string
	SequenceStrategy   string
}

type DriveConfig struct {
	ServiceAccountJSON string
	RootFolderID       string
	BrandRootIDs       []string
	BrandSearchDepth   int
}

type RedisConfig struct {
	Addr           string
	IdempotencyTTL int // hours
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	Debug       bool
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		},
		Workspace: WorkspaceConfig{
			Token:              getEnv("NOTION_TOKEN", ""),
			BaseURL:            getEnv("NOTION_BASE_URL", "https://api.notion.com/v1"),
			ProjectsDatabaseID: getEnv("NOTION_PROJECTS_DB_ID", ""),
			TitleProperty:      getEnv("NOTION_TITLE_PROP", "Project Name"),
			FolderURLProperty:  getEnv("NOTION_FOLDER_URL_PROP", "Project Folder"),
			ClientRelation:     getEnv("NOTION_CLIENT_RELATION_PROP", "Client"),
			ClientNameProperty: getEnv("NOTION_CLIENT_NAME_PROP", "Name"),
			SequenceRollup:     getEnv("NOTION_SEQUENCE_ROLLUP_PROP", "Project Count"),
			TemplateBlockID:    getEnv("NOTION_TEMPLATE_BLOCK_ID", ""),
			SequenceStrategy:   getEnv("SEQUENCE_STRATEGY", "count"),
		},
		Drive: DriveConfig{
			ServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			RootFolderID:       getEnv("GOOGLE_ROOT_FOLDER_ID", ""),
			BrandRootIDs:       getEnvAsList("GOOGLE_BRAND_ROOT_IDS"),
			BrandSearchDepth:   getEnvAsInt("BRAND_SEARCH_MAX_DEPTH", 5),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			IdempotencyTTL: getEnvAsInt("IDEMPOTENCY_TTL_HOURS", 24),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Debug:       getEnvAsBool("DEBUG", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Workspace.Token == "" {
		return fmt.Errorf("NOTION_TOKEN is required")
	}

	if c.Workspace.ProjectsDatabaseID == "" && c.Workspace.SequenceStrategy == "count" {
		return fmt.Errorf("NOTION_PROJECTS_DB_ID is required when SEQUENCE_STRATEGY=count")
	}

	switch c.Workspace.SequenceStrategy {
	case "count", "rollup":
	default:
		return fmt.Errorf("SEQUENCE_STRATEGY must be count or rollup, got %q", c.Workspace.SequenceStrategy)
	}

	if c.Drive.ServiceAccountJSON == "" {
		return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON is required")
	}

	if c.Drive.RootFolderID == "" {
		return fmt.Errorf("GOOGLE_ROOT_FOLDER_ID is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
