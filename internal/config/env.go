package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name, e.g. SINGLEBASE_API_KEY.
const EnvPrefix = "singlebase"

// Env holds settings read from the environment.
type Env struct {
	APIKey      string        `envconfig:"API_KEY"`
	APIURL      string        `envconfig:"API_URL"`
	EndpointKey string        `envconfig:"ENDPOINT_KEY"`
	BearerToken string        `envconfig:"BEARER_TOKEN"`
	Profile     string        `envconfig:"PROFILE"`
	Output      string        `envconfig:"OUTPUT"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"10s"`

	KeyringBackend  string `envconfig:"KEYRING_BACKEND" default:"auto"`
	KeyringPassword string `envconfig:"KEYRING_PASSWORD"`
	CredentialsDir  string `envconfig:"CREDENTIALS_DIR"`
}

// LoadEnv decodes SINGLEBASE_* variables.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, err
	}
	return env, nil
}

// DotEnvPath returns ~/.singlebase/.env, or "" when the home directory is unknown.
func DotEnvPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".singlebase", ".env")
}

// LoadDotEnv loads variables from path when the file exists. Variables
// already present in the environment are left alone.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}
