package config

const (
	defaultDataDir              = "~/.local/share/newsdesk"
	defaultLogDir               = "~/.local/share/newsdesk/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiTimeoutSeconds = 60
	defaultIngestPollInterval   = 900
	defaultIngestRequestTimeout = 30
	defaultBatchPollInterval    = 300
	defaultErrorRetryInterval   = 60
	defaultNotifyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		Ingest: Ingest{
			PollInterval:   defaultIngestPollInterval,
			RequestTimeout: defaultIngestRequestTimeout,
			FetchFullText:  true,
		},
		Workflow: Workflow{
			BatchPollInterval:  defaultBatchPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
