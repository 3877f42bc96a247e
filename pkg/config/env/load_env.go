package env

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file.
// It uses the ENV_PATH environment variable to determine the path to the .env file.
// A missing file is only an error when running locally (env "local" or unset)
// and ENV_PATH was set explicitly.
func LoadDotEnv(env string, defaultPath string) error {
	envPath, explicit := os.LookupEnv("ENV_PATH")
	if !explicit || envPath == "" {
		slog.Debug("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
		explicit = false
	}

	err := godotenv.Load(envPath)
	if err != nil {
		if explicit && (env == "local" || env == "") {
			slog.Error("Failed to load environment variables in local mode", "path", envPath, "error", err)
			return err
		}
		slog.Debug("Skipping .env ...", "path", envPath)
	}

	return nil
}
