package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"club-app-go/pkg/logger"
	"github.com/joho/godotenv"
)

const dotenvFilename = ".env"

// loadDotEnv loads ENV_FILE when set. Otherwise it loads the nearest
// ".env.<ENV>" and ".env" walking up from the working directory, in that
// order. Variables already present in the environment win, and the
// environment-specific file wins over the shared one.
func loadDotEnv(log logger.Logger) error {
	if explicit := strings.TrimSpace(os.Getenv("ENV_FILE")); explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return fmt.Errorf("ENV_FILE %s: %w", explicit, err)
		}
		log.Info("dotenv: loaded", "path", explicit)
		return nil
	}

	var names []string
	if env := strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))); env != "" {
		names = append(names, dotenvFilename+"."+env)
	}
	names = append(names, dotenvFilename)

	for _, name := range names {
		path, err := findDotEnv(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
		log.Info("dotenv: loaded", "path", path)
	}
	return nil
}

func findDotEnv(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
