package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
)

const appDirName = "zozi-alerts"

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in order. The first entry is where a default file is created.
func GetDefaultConfigPaths() ([]string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategorySystem).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	if runtime.GOOS == "windows" {
		return []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", appDirName),
		}, nil
	}

	return []string{
		filepath.Join(homeDir, ".config", appDirName),
		exeDir,
		filepath.Join("/etc", appDirName),
	}, nil
}
