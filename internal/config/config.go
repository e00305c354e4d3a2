package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	AppID                 int64         `mapstructure:"app_id"`
	PrivateKey            string        `mapstructure:"private_key"`
	PrivateKeyPath        string        `mapstructure:"private_key_path"`
	InstallationID        int64         `mapstructure:"installation_id"`
	InstallationAccount   string        `mapstructure:"installation_account"`
	RepoOwner             string        `mapstructure:"repo_owner"`
	RepoName              string        `mapstructure:"repo_name"`
	BaseBranch            string        `mapstructure:"base_branch"`
	SecretKey             string        `mapstructure:"secret_key"`
	APIBaseURL            string        `mapstructure:"api_base_url"`
	ListenAddr            string        `mapstructure:"listen_addr"`
	HTTPTimeout           time.Duration `mapstructure:"http_timeout"`
	UploadTimeout         time.Duration `mapstructure:"upload_timeout"`
	RetryCount            uint64        `mapstructure:"retry_count"`
	RetryDelay            time.Duration `mapstructure:"retry_delay"`
	CleanupOrphanedBranch bool          `mapstructure:"cleanup_orphaned_branch"`
	BranchTemplate        string        `mapstructure:"branch_template"`
	TitleTemplate         string        `mapstructure:"title_template"`
	CommitTemplate        string        `mapstructure:"commit_template"`
	MaxUploadBytes        int64         `mapstructure:"max_upload_bytes"`
	LogLevel              string        `mapstructure:"log_level"`
	LogFormat             string        `mapstructure:"log_format"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		BaseBranch:     "main",
		APIBaseURL:     "https://api.github.com/",
		ListenAddr:     ":8080",
		HTTPTimeout:    30 * time.Second,
		UploadTimeout:  2 * time.Minute,
		RetryCount:     0,
		RetryDelay:     time.Second,
		BranchTemplate: "upload-{timestamp}",
		TitleTemplate:  "[PYQS UPLOADER] {filename}",
		CommitTemplate: "Add {filename}",
		MaxUploadBytes: 32 << 20,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// HasAppCredentials reports whether uploads can authenticate against GitHub.
func (c *Config) HasAppCredentials() bool {
	return c.AppID != 0 && (c.PrivateKey != "" || c.PrivateKeyPath != "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AppID < 0 {
		return fmt.Errorf("app_id cannot be negative")
	}
	if c.AppID == 0 && (c.PrivateKey != "" || c.PrivateKeyPath != "") {
		return fmt.Errorf("app_id is required when a private key is configured")
	}
	if err := ValidateGitHubOwnerRepo(c.RepoOwner, c.RepoName); err != nil {
		return fmt.Errorf("invalid github configuration: %w", err)
	}
	if err := ValidateBranchName(c.BaseBranch); err != nil {
		return fmt.Errorf("invalid base_branch: %w", err)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url cannot be empty")
	}
	if c.HTTPTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("http_timeout and upload_timeout must be positive")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry_delay must be positive")
	}
	if !strings.Contains(c.BranchTemplate, "{timestamp}") {
		return fmt.Errorf("branch_template must contain {timestamp}")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	return nil
}

// ValidateForUploads validates that app credentials are present
func (c *Config) ValidateForUploads() error {
	if !c.HasAppCredentials() {
		return fmt.Errorf("app_id and private_key (or private_key_path) are required for uploads")
	}
	return c.Validate()
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names (exported for reuse)
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

var branchNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)

// ValidateBranchName validates a git branch name.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if len(branch) > 255 {
		return fmt.Errorf("branch name too long: %d characters (max: 255)", len(branch))
	}
	if strings.HasPrefix(branch, "/") || strings.HasSuffix(branch, "/") {
		return fmt.Errorf("branch name cannot start or end with slash: %s", branch)
	}
	if strings.Contains(branch, "..") {
		return fmt.Errorf("branch name cannot contain consecutive dots: %s", branch)
	}
	if strings.HasSuffix(branch, ".lock") {
		return fmt.Errorf("branch name cannot end with .lock: %s", branch)
	}
	if !branchNameRegex.MatchString(branch) {
		return fmt.Errorf("invalid branch name format: %s", branch)
	}
	return nil
}

// LoadPrivateKey returns the PEM key, reading private_key_path through fs
// when the key is not inlined.
func (c *Config) LoadPrivateKey(fs afero.Fs) ([]byte, error) {
	if key := strings.TrimSpace(c.PrivateKey); key != "" {
		// Env files often carry the PEM with literal \n sequences.
		return []byte(strings.ReplaceAll(key, `\n`, "\n")), nil
	}
	if c.PrivateKeyPath == "" {
		return nil, fmt.Errorf("neither private_key nor private_key_path is set")
	}
	data, err := afero.ReadFile(fs, c.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	return data, nil
}

var envBindings = map[string][]string{
	"app_id":                  {"APP_ID"},
	"private_key":             {"PRIVATE_KEY"},
	"private_key_path":        {"PRIVATE_KEY_PATH"},
	"installation_id":         {"INSTALLATION_ID"},
	"installation_account":    {"INSTALLATION_ACCOUNT"},
	"repo_owner":              {"REPO_OWNER"},
	"repo_name":               {"REPO_NAME"},
	"base_branch":             {"BASE_BRANCH"},
	"secret_key":              {"SECRET_KEY"},
	"api_base_url":            {"GITHUB_API_URL"},
	"listen_addr":             {"LISTEN_ADDR"},
	"http_timeout":            {"HTTP_TIMEOUT"},
	"upload_timeout":          {"UPLOAD_TIMEOUT"},
	"retry_count":             {"RETRY_COUNT"},
	"retry_delay":             {"RETRY_DELAY"},
	"cleanup_orphaned_branch": {"CLEANUP_ORPHANED_BRANCH"},
	"branch_template":         {"BRANCH_TEMPLATE"},
	"title_template":          {"TITLE_TEMPLATE"},
	"commit_template":         {"COMMIT_TEMPLATE"},
	"max_upload_bytes":        {"MAX_UPLOAD_BYTES"},
	"log_level":               {"LOG_LEVEL"},
	"log_format":              {"LOG_FORMAT"},
}

const envPrefix = "PYQS_UPLOADER"

// LoadConfig reads configuration from the environment and an optional
// .pyqs-uploader.yaml in the working directory.
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName(".pyqs-uploader")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// BindEnv checks the names in order; the prefixed form wins.
	for key, names := range envBindings {
		args := append([]string{key, envPrefix + "_" + strings.ToUpper(key)}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	defaults := DefaultConfig()
	v.SetDefault("base_branch", defaults.BaseBranch)
	v.SetDefault("api_base_url", defaults.APIBaseURL)
	v.SetDefault("http_timeout", defaults.HTTPTimeout)
	v.SetDefault("upload_timeout", defaults.UploadTimeout)
	v.SetDefault("retry_count", defaults.RetryCount)
	v.SetDefault("retry_delay", defaults.RetryDelay)
	v.SetDefault("branch_template", defaults.BranchTemplate)
	v.SetDefault("title_template", defaults.TitleTemplate)
	v.SetDefault("commit_template", defaults.CommitTemplate)
	v.SetDefault("max_upload_bytes", defaults.MaxUploadBytes)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	if err := v.BindEnv("port", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind port env: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	// PORT is what most platforms inject; it only applies when no
	// listen address was configured explicitly.
	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
		if port := v.GetString("port"); port != "" {
			config.ListenAddr = ":" + port
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
