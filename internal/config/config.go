package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	DataDir      string `json:"data_dir"`
	StorePath    string `json:"store_path"`
	APIPort      string `json:"api_port"`
	LogLevel     string `json:"log_level"`
	CORSOrigins  string `json:"cors_origins"` // comma separated, * allows all
	KeywordsPath string `json:"keywords_path"`

	// Matching thresholds. The fuzzy gates are empirically chosen
	// constants carried as configuration defaults.
	MatchingThreshold  int `json:"matching_threshold"`
	CompanySimilarity  int `json:"company_similarity"`
	PositionSimilarity int `json:"position_similarity"`
	CompanyOnlyMin     int `json:"company_only_min"`
	RecentWindowDays   int `json:"recent_window_days"`
	DetectionThreshold int `json:"detection_threshold"`

	// Classification backend
	AIEnabled  bool   `json:"ai_enabled"`
	AIProvider string `json:"ai_provider"`
	AIAPIKey   string `json:"ai_api_key"`
	AIModel    string `json:"ai_model"`
	AIBaseURL  string `json:"ai_base_url"`

	// Mail fetching
	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `json:"imap_port"`
	IMAPUsername string `json:"imap_username"`
	IMAPPassword string `json:"imap_password"`
	IMAPUseSSL   bool   `json:"imap_use_ssl"`
	SearchDays   int    `json:"search_days"`

	// OAuth (Gmail XOAUTH2)
	OAuthClientID     string `json:"oauth_client_id"`
	OAuthClientSecret string `json:"oauth_client_secret"`
	OAuthRefreshToken string `json:"oauth_refresh_token"`
}

// Default configuration values
const (
	DefaultDataDir            = "data"
	DefaultStorePath          = "data/applications.db"
	DefaultAPIPort            = "8080"
	DefaultLogLevel           = "INFO"
	DefaultCORSOrigins        = "*"
	DefaultMatchingThreshold  = 80
	DefaultCompanySimilarity  = 85
	DefaultPositionSimilarity = 75
	DefaultCompanyOnlyMin     = 90
	DefaultRecentWindowDays   = 30
	DefaultDetectionThreshold = 5
	DefaultSearchDays         = 60
	DefaultIMAPHost           = "imap.gmail.com"
	DefaultIMAPPort           = 993
)

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:            DefaultDataDir,
		StorePath:          DefaultStorePath,
		APIPort:            DefaultAPIPort,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        DefaultCORSOrigins,
		MatchingThreshold:  DefaultMatchingThreshold,
		CompanySimilarity:  DefaultCompanySimilarity,
		PositionSimilarity: DefaultPositionSimilarity,
		CompanyOnlyMin:     DefaultCompanyOnlyMin,
		RecentWindowDays:   DefaultRecentWindowDays,
		DetectionThreshold: DefaultDetectionThreshold,
		SearchDays:         DefaultSearchDays,
		IMAPHost:           DefaultIMAPHost,
		IMAPPort:           DefaultIMAPPort,
		IMAPUseSSL:         true,
	}

	// Config file is optional
	_ = cfg.loadFromFile()

	// Override with environment variables
	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile loads configuration from config.json file
func (c *Config) loadFromFile() error {
	configPaths := []string{
		"config.json",
		filepath.Join(c.DataDir, "config.json"),
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return json.Unmarshal(data, c)
	}

	return os.ErrNotExist
}

// loadFromEnv overrides configuration with environment variables
func (c *Config) loadFromEnv() {
	setString(&c.DataDir, "JOBTRACKER_DATA_DIR")
	setString(&c.StorePath, "JOBTRACKER_STORE_PATH")
	setString(&c.APIPort, "JOBTRACKER_API_PORT")
	setString(&c.LogLevel, "JOBTRACKER_LOG_LEVEL")
	setString(&c.CORSOrigins, "JOBTRACKER_CORS_ORIGINS")
	setString(&c.KeywordsPath, "JOBTRACKER_KEYWORDS_PATH")

	setInt(&c.MatchingThreshold, "MATCHING_THRESHOLD")
	setInt(&c.DetectionThreshold, "DETECTION_THRESHOLD")
	setInt(&c.RecentWindowDays, "RECENT_WINDOW_DAYS")
	setInt(&c.SearchDays, "SEARCH_DAYS")

	setBool(&c.AIEnabled, "AI_ENABLED")
	setString(&c.AIProvider, "AI_PROVIDER")
	setString(&c.AIAPIKey, "AI_API_KEY")
	setString(&c.AIModel, "AI_MODEL")
	setString(&c.AIBaseURL, "AI_BASE_URL")

	setString(&c.IMAPHost, "IMAP_HOST")
	setInt(&c.IMAPPort, "IMAP_PORT")
	setString(&c.IMAPUsername, "IMAP_USERNAME")
	setString(&c.IMAPPassword, "IMAP_PASSWORD")
	setBool(&c.IMAPUseSSL, "IMAP_USE_SSL")

	setString(&c.OAuthClientID, "OAUTH_CLIENT_ID")
	setString(&c.OAuthClientSecret, "OAUTH_CLIENT_SECRET")
	setString(&c.OAuthRefreshToken, "OAUTH_REFRESH_TOKEN")
}

// TrackerPath returns the path of a tracker file inside the data directory.
func (c *Config) TrackerPath(name string) string {
	return filepath.Join(c.DataDir, name)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
