package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(".env")
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyServersDir, defaultServersDir())
	viper.SetDefault(KeyNodeBin, "node")
	viper.SetDefault(KeyRunTimeout, 5)
	viper.SetDefault(KeyWeatherUnits, "metric")
	viper.SetDefault(KeySQLitePath, "adapters.db")
	viper.SetDefault(KeyBrowserHeadless, true)
	viper.SetDefault(KeyBrowserNavTimeout, 30)
}

func defaultServersDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "servers"
	}
	return filepath.Join(home, ".mcpforge", "servers")
}

func LogLevel() string        { return viper.GetString(KeyLogLevel) }
func ServersDir() string      { return viper.GetString(KeyServersDir) }
func RegistryPath() string    { return viper.GetString(KeyRegistryPath) }
func NodeBin() string         { return viper.GetString(KeyNodeBin) }
func RunTimeoutSeconds() int  { return viper.GetInt(KeyRunTimeout) }
func GitHubToken() string     { return viper.GetString(KeyGitHubToken) }
func GitLabToken() string     { return viper.GetString(KeyGitLabToken) }
func GitLabBaseURL() string   { return viper.GetString(KeyGitLabBaseURL) }
func JiraBaseURL() string     { return viper.GetString(KeyJiraBaseURL) }
func JiraEmail() string       { return viper.GetString(KeyJiraEmail) }
func JiraAPIToken() string    { return viper.GetString(KeyJiraAPIToken) }
func WeatherAPIKey() string   { return viper.GetString(KeyOpenWeatherAPIKey) }
func WeatherUnits() string    { return viper.GetString(KeyWeatherUnits) }
func CoinGeckoAPIKey() string { return viper.GetString(KeyCoinGeckoAPIKey) }
func PostgresURL() string     { return viper.GetString(KeyPostgresURL) }
func PostgresDebug() bool     { return viper.GetBool(KeyPostgresDebug) }
func SQLitePath() string      { return viper.GetString(KeySQLitePath) }
func BigQueryProject() string { return viper.GetString(KeyBigQueryProjectID) }
func BrowserExecPath() string { return viper.GetString(KeyBrowserExecPath) }
func BrowserHeadless() bool   { return viper.GetBool(KeyBrowserHeadless) }
func BrowserNavTimeout() int  { return viper.GetInt(KeyBrowserNavTimeout) }

// Lookup resolves a config key through viper. Helpers like
// adapter.RequireEnv use it to detect missing credentials before a tool
// runs its main action.
func Lookup(key string) string {
	return strings.TrimSpace(viper.GetString(key))
}
