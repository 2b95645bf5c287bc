package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mcpforge/adapters/internal/config"
)

// ClientConfigPath resolves the host client's registration document path.
// The config key wins when set (tests point it at a temp dir); otherwise
// the path is the platform's fixed desktop location.
func ClientConfigPath() (string, error) {
	if p := config.RegistryPath(); p != "" {
		return p, nil
	}
	return platformConfigPath(runtime.GOOS)
}

func platformConfigPath(goos string) (string, error) {
	switch goos {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(appData, "Claude", "claude_desktop_config.json"), nil
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json"), nil
	default:
		return "", fmt.Errorf("no registration document location known for %s", goos)
	}
}
