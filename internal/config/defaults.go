package config

const (
	defaultDataDir             = "~/.local/share/prodpipe"
	defaultLogDir              = "~/.local/share/prodpipe/logs"
	defaultAPIBind             = "127.0.0.1:7496"
	defaultMaxIdentifierLength = 64
	defaultMaxSlugLength       = 40
	defaultSuffixLength        = 6
	defaultAcceptThreshold     = 0.85
	defaultReviewThreshold     = 0.70
	defaultSLAHours            = 48
	defaultStaleAssignHours    = 24
	defaultSweepInterval       = 30
	defaultStoreTimeout        = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultNotifyTimeout       = 10
)

// DefaultWeights returns the stock per-check scoring weights. Callers receive
// a fresh map so config mutation cannot leak between loads.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"background_white":      0.25,
		"blur":                  0.15,
		"object_coverage":       0.25,
		"object_detection":      0.20,
		"perceptual_similarity": 0.15,
	}
}

// defaultSLALadder maps priority tier (1 = most urgent) to SLA hours.
func defaultSLALadder() []int {
	return []int{4, 8, 24, 48, 72}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Identity: Identity{
			MaxLength:     defaultMaxIdentifierLength,
			MaxSlugLength: defaultMaxSlugLength,
			SuffixLength:  defaultSuffixLength,
		},
		Validation: Validation{
			AcceptThreshold: defaultAcceptThreshold,
			ReviewThreshold: defaultReviewThreshold,
			Weights:         DefaultWeights(),
		},
		Review: Review{
			DefaultSLAHours:      defaultSLAHours,
			SLAHoursByPriority:   defaultSLALadder(),
			AutoPriority:         true,
			RouteAutoRejected:    false,
			StaleAssignmentHours: defaultStaleAssignHours,
			ExtendSLAOnRelease:   false,
		},
		Workflow: Workflow{
			SweepInterval:       defaultSweepInterval,
			StoreTimeoutSeconds: defaultStoreTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Review:         true,
			SLA:            true,
			Errors:         true,
		},
	}
}
