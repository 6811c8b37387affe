package cli

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds settings read from the environment, .env files, and the
// optional .notices.yaml config file. Command-line flags are bound on top
// and win over everything here.
type Config struct {
	// GitHubToken avoids the strict rate limiting on anonymous GitHub
	// requests. Any user access token works; no write permissions are
	// needed.
	GitHubToken string

	LogLevel string
	LogJSON  bool

	Concurrency int
	MaxDepth    int
}

// LoadConfig reads configuration in order of precedence: environment
// variables (NOTICES_ prefixed, plus the historical unprefixed names),
// .env files, then a .notices.yaml file in the home or current directory.
func LoadConfig() *Config {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("notices")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The token and log level have been read from these names since before
	// the config file existed.
	_ = v.BindEnv("github_token", "GITHUB_USER_ACCESS_TOKEN")
	_ = v.BindEnv("log_level", "LOGLEVEL")

	v.SetDefault("log_level", "info")
	v.SetDefault("concurrency", 4)
	v.SetDefault("max_depth", 999)

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".notices")
	_ = v.ReadInConfig()

	return &Config{
		GitHubToken: v.GetString("github_token"),
		LogLevel:    v.GetString("log_level"),
		LogJSON:     v.GetBool("log_json"),
		Concurrency: v.GetInt("concurrency"),
		MaxDepth:    v.GetInt("max_depth"),
	}
}

// loadEnvFiles loads .env files; .env.local wins over .env. godotenv
// never overrides variables that are already set, so the first file
// loaded takes precedence.
func loadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
}
