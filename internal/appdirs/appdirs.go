package appdirs

import (
	"os"
	"path/filepath"
)

const appDirName = "notechat"

// DataDir is NOTECHAT_DATA_DIR when set, else notechat under the user config dir.
func DataDir() (string, error) {
	if override := os.Getenv("NOTECHAT_DATA_DIR"); override != "" {
		return override, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

func SecretsPath(dataDir string) string {
	return filepath.Join(dataDir, "secrets.enc")
}

func MasterKeyPath(dataDir string) string {
	return filepath.Join(dataDir, "master.key")
}

func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}
