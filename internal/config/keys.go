package config

const (
	KeyLogLevel = "log_level"

	// forge
	KeyServersDir   = "servers_dir"
	KeyRegistryPath = "registry_path"
	KeyNodeBin      = "node_bin"
	KeyRunTimeout   = "run_timeout_seconds"

	// trackers
	KeyGitHubToken   = "github_token"
	KeyGitLabToken   = "gitlab_token"
	KeyGitLabBaseURL = "gitlab_base_url"
	KeyJiraBaseURL   = "jira_base_url"
	KeyJiraEmail     = "jira_email"
	KeyJiraAPIToken  = "jira_api_token"

	// feeds
	KeyOpenWeatherAPIKey = "openweather_api_key"
	KeyWeatherUnits      = "weather_units"
	KeyCoinGeckoAPIKey   = "coingecko_api_key"

	// data stores
	KeyPostgresURL       = "postgres_url"
	KeyPostgresDebug     = "postgres_debug"
	KeySQLitePath        = "sqlite_path"
	KeyBigQueryProjectID = "bigquery_project_id"

	// browser
	KeyBrowserExecPath   = "browser_exec_path"
	KeyBrowserHeadless   = "browser_headless"
	KeyBrowserNavTimeout = "browser_nav_timeout_seconds"
)
