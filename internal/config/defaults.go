package config

const (
	defaultStateDir              = "~/.local/share/subtext"
	defaultLogDir                = "~/.local/share/subtext/logs"
	defaultLogFormat             = "auto"
	defaultLogLevel              = "info"
	defaultCaptionLanguage       = "en"
	defaultIndexURL              = "http://localhost:9200"
	defaultIndexName             = "captions"
	defaultIndexTimeoutSeconds   = 30
	defaultIndexChunkSize        = 5
	defaultFetchTimeoutSeconds   = 30
	defaultFetchMaxAttempts      = 4
	defaultFetchInitialBackoffMS = 500
	defaultFetchMaxBackoffMS     = 8000
	defaultFetchMinIntervalMS    = 250
	defaultFetchUserAgent        = "Subtext/dev"
	defaultWorkerCount           = 2
	defaultWorkersPerVideo       = 1
	defaultNtfyURL               = "https://ntfy.sh"
	defaultNotifyRequestTimeout  = 10
	defaultEventSubjectPrefix    = "subtext"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Captions: Captions{
			Languages:    []string{defaultCaptionLanguage},
			AutoFallback: true,
		},
		Index: Index{
			Enabled:        true,
			URL:            defaultIndexURL,
			Name:           defaultIndexName,
			TimeoutSeconds: defaultIndexTimeoutSeconds,
			ChunkSize:      defaultIndexChunkSize,
		},
		Fetch: Fetch{
			TimeoutSeconds:   defaultFetchTimeoutSeconds,
			MaxAttempts:      defaultFetchMaxAttempts,
			InitialBackoffMS: defaultFetchInitialBackoffMS,
			MaxBackoffMS:     defaultFetchMaxBackoffMS,
			MinIntervalMS:    defaultFetchMinIntervalMS,
			UserAgent:        defaultFetchUserAgent,
		},
		Workers: Workers{
			Count:    defaultWorkerCount,
			PerVideo: defaultWorkersPerVideo,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			NtfyURL:        defaultNtfyURL,
			RequestTimeout: defaultNotifyRequestTimeout,
			Runs:           true,
			Errors:         true,
		},
		Events: Events{
			SubjectPrefix: defaultEventSubjectPrefix,
		},
	}
}
