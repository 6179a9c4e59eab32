package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys. A chi311.yaml file may use the same names in lower case.
const (
	EnvAppToken    = "SOCRATA_APP_TOKEN"
	EnvAccessToken = "SOCRATA_ACCESS_TOKEN"
	EnvAPIURL      = "CHI311_API_URL"
	EnvLogLevel    = "CHI311_LOG_LEVEL"
	EnvLogFormat   = "CHI311_LOG_FORMAT"
)

// Environment holds settings that come from the process environment, an
// optional .env file and an optional chi311.yaml.
type Environment struct {
	AppToken    string
	AccessToken string
	APIURL      string
	LogLevel    string
	LogFormat   string
	// ConfigFile is the config file that was read, if any.
	ConfigFile string
}

// LoadEnvironment reads dir/.env (never overriding variables already set) and
// then chi311.yaml from dir or dir/config. Environment variables win over the file.
func LoadEnvironment(dir string) (Environment, error) {
	if dir == "" {
		dir = "."
	}
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Environment{}, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("chi311")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(filepath.Join(dir, "config"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{EnvAppToken, EnvAccessToken, EnvAPIURL, EnvLogLevel, EnvLogFormat} {
		if err := v.BindEnv(strings.ToLower(key), key); err != nil {
			return Environment{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Environment{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	get := func(key string) string { return strings.TrimSpace(v.GetString(strings.ToLower(key))) }
	return Environment{
		AppToken:    get(EnvAppToken),
		AccessToken: get(EnvAccessToken),
		APIURL:      get(EnvAPIURL),
		LogLevel:    get(EnvLogLevel),
		LogFormat:   get(EnvLogFormat),
		ConfigFile:  v.ConfigFileUsed(),
	}, nil
}

// ApplyEnvironment fills settings that were not given as flags.
// The app token is left to the fetcher's own resolution when unset here.
func (c *Config) ApplyEnvironment(env Environment) {
	if c.Source.AppToken == "" {
		c.Source.AppToken = env.AppToken
	}
	if c.Source.AccessToken == "" {
		c.Source.AccessToken = env.AccessToken
	}
	if c.Source.APIURL == "" {
		c.Source.APIURL = env.APIURL
	}
	if c.Runtime.LogLevel == "" {
		c.Runtime.LogLevel = env.LogLevel
	}
	if c.Runtime.LogFormat == "" {
		c.Runtime.LogFormat = env.LogFormat
	}
}
