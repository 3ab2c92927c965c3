package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// globalConfig stores the configuration loaded with command-line overrides
// This allows other packages to access the same configuration that was loaded by the CLI
var (
	globalConfig *Config
	configMutex  sync.Mutex
)

// Config holds the application configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Server   ServerConfig   `yaml:"server"`
	Export   ExportConfig   `yaml:"export"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoadOptions holds command-line override options
type LoadOptions struct {
	ConfigFile string
	DataDir    string
	Host       string
	Port       string
	OutputDir  string
	Format     string
	Scale      int
	Workers    int
	LogLevel   string
}

// DataConfig locates the client data files
type DataConfig struct {
	Dir   string `yaml:"dir"`
	Facet string `yaml:"facet"`
	// UseDiffs applies the map and statics patch files when they exist.
	UseDiffs bool      `yaml:"useDiffs"`
	Files    FileNames `yaml:"files"`
}

// FileNames holds the data file names relative to DataConfig.Dir
type FileNames struct {
	ArtIndex     string `yaml:"artIndex"`
	Art          string `yaml:"art"`
	GumpIndex    string `yaml:"gumpIndex"`
	Gump         string `yaml:"gump"`
	AnimIndex    string `yaml:"animIndex"`
	Anim         string `yaml:"anim"`
	TextureIndex string `yaml:"textureIndex"`
	Textures     string `yaml:"textures"`
	SkillsIndex  string `yaml:"skillsIndex"`
	Skills       string `yaml:"skills"`
	Hues         string `yaml:"hues"`
	TileData     string `yaml:"tileData"`
	Fonts        string `yaml:"fonts"`
	Map          string `yaml:"map"`
	StaticsIndex string `yaml:"staticsIndex"`
	Statics      string `yaml:"statics"`
	RadarColors  string `yaml:"radarColors"`

	MapDiffLookup     string `yaml:"mapDiffLookup"`
	MapDiff           string `yaml:"mapDiff"`
	StaticsDiffLookup string `yaml:"staticsDiffLookup"`
	StaticsDiffIndex  string `yaml:"staticsDiffIndex"`
	StaticsDiff       string `yaml:"staticsDiff"`
}

// ServerConfig holds viewer server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// ExportConfig holds batch export configuration
type ExportConfig struct {
	OutputDir string `yaml:"outputDir"`
	Format    string `yaml:"format"`
	Scale     int    `yaml:"scale"`
	Workers   int    `yaml:"workers"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	AllowedOrigins     []string `yaml:"allowedOrigins"`
	EnableRateLimit    bool     `yaml:"enableRateLimit"`
	RateLimitPerMinute int      `yaml:"rateLimitPerMinute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:      ".",
			Facet:    "felucca",
			UseDiffs: true,
			Files: FileNames{
				ArtIndex:     "artidx.mul",
				Art:          "art.mul",
				GumpIndex:    "gumpidx.mul",
				Gump:         "gumpart.mul",
				AnimIndex:    "anim.idx",
				Anim:         "anim.mul",
				TextureIndex: "texidx.mul",
				Textures:     "texmaps.mul",
				SkillsIndex:  "skills.idx",
				Skills:       "skills.mul",
				Hues:         "hues.mul",
				TileData:     "tiledata.mul",
				Fonts:        "fonts.mul",
				Map:          "map0.mul",
				StaticsIndex: "staidx0.mul",
				Statics:      "statics0.mul",
				RadarColors:  "radarcol.mul",

				MapDiffLookup:     "mapdifl0.mul",
				MapDiff:           "mapdif0.mul",
				StaticsDiffLookup: "stadifl0.mul",
				StaticsDiffIndex:  "stadifi0.mul",
				StaticsDiff:       "stadif0.mul",
			},
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Export: ExportConfig{
			OutputDir: "export",
			Format:    "png",
			Scale:     1,
			Workers:   4,
		},
		Security: SecurityConfig{
			AllowedOrigins:     []string{},
			EnableRateLimit:    true,
			RateLimitPerMinute: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path joins name onto the data directory.
func (d DataConfig) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides builds the configuration from, in increasing priority,
// defaults, the YAML file, environment variables and command-line overrides.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := Default()

	configFile := getOverrideOrEnv(opts.ConfigFile, "UOMUL_CONFIG", "")
	if configFile != "" {
		if err := config.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	// Data config
	config.Data.Dir = getOverrideOrEnv(opts.DataDir, "UO_DATA_DIR", config.Data.Dir)
	config.Data.Facet = getEnvWithDefault("UO_FACET", config.Data.Facet)
	config.Data.UseDiffs = getBoolWithDefault("UO_USE_DIFFS", config.Data.UseDiffs)

	// Server config
	config.Server.Host = getOverrideOrEnv(opts.Host, "SERVER_HOST", config.Server.Host)
	config.Server.Port = getOverrideOrEnv(opts.Port, "SERVER_PORT", config.Server.Port)
	config.Server.ReadTimeout = getDurationWithDefault("SERVER_READ_TIMEOUT", config.Server.ReadTimeout)
	config.Server.WriteTimeout = getDurationWithDefault("SERVER_WRITE_TIMEOUT", config.Server.WriteTimeout)
	config.Server.IdleTimeout = getDurationWithDefault("SERVER_IDLE_TIMEOUT", config.Server.IdleTimeout)

	// Export config
	config.Export.OutputDir = getOverrideOrEnv(opts.OutputDir, "EXPORT_DIR", config.Export.OutputDir)
	config.Export.Format = getOverrideOrEnv(opts.Format, "EXPORT_FORMAT", config.Export.Format)
	config.Export.Scale = getIntOverride(opts.Scale, "EXPORT_SCALE", config.Export.Scale)
	config.Export.Workers = getIntOverride(opts.Workers, "EXPORT_WORKERS", config.Export.Workers)

	// Security config
	config.Security.AllowedOrigins = getStringSliceWithDefault("ALLOWED_ORIGINS", config.Security.AllowedOrigins)
	config.Security.EnableRateLimit = getBoolWithDefault("ENABLE_RATE_LIMIT", config.Security.EnableRateLimit)
	config.Security.RateLimitPerMinute = getIntWithDefault("RATE_LIMIT_PER_MINUTE", config.Security.RateLimitPerMinute)

	// Logging config
	config.Logging.Level = getOverrideOrEnv(opts.LogLevel, "LOG_LEVEL", config.Logging.Level)
	config.Logging.Format = getEnvWithDefault("LOG_FORMAT", config.Logging.Format)
	config.Logging.File = getEnvWithDefault("LOG_FILE", config.Logging.File)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store the configuration globally so other packages can access it
	configMutex.Lock()
	globalConfig = config
	configMutex.Unlock()

	return config, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// GetGlobalConfig returns the globally stored configuration
// This should be used by packages that need access to the configuration
// loaded by the CLI with command-line overrides
func GetGlobalConfig() *Config {
	configMutex.Lock()
	defer configMutex.Unlock()
	return globalConfig
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate data config
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	validFacets := map[string]bool{
		"felucca":  true,
		"trammel":  true,
		"ilshenar": true,
		"malas":    true,
		"tokuno":   true,
		"termur":   true,
	}

	if !validFacets[strings.ToLower(c.Data.Facet)] {
		return fmt.Errorf("invalid facet: %s", c.Data.Facet)
	}

	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	// Validate export config
	if c.Export.Format != "png" && c.Export.Format != "bmp" {
		return fmt.Errorf("invalid export format: %s", c.Export.Format)
	}

	if c.Export.Scale < 1 || c.Export.Scale > 16 {
		return fmt.Errorf("export scale must be between 1 and 16")
	}

	if c.Export.Workers <= 0 {
		return fmt.Errorf("export workers must be positive")
	}

	// Validate security config
	if c.Security.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate limit per minute must be positive")
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceWithDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitString(value, ",")
	}
	return defaultValue
}

// getOverrideOrEnv returns command-line override value, env value, or default
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}

// getIntOverride is getOverrideOrEnv for integers; zero means no override
func getIntOverride(override int, envKey string, defaultValue int) int {
	if override != 0 {
		return override
	}
	return getIntWithDefault(envKey, defaultValue)
}

func splitString(s, sep string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
