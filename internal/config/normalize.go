package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIdentity()
	c.normalizeValidation()
	c.normalizeReview()
	c.normalizeWorkflow()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeIdentity() {
	if c.Identity.MaxLength <= 0 {
		c.Identity.MaxLength = defaultMaxIdentifierLength
	}
	if c.Identity.MaxSlugLength <= 0 {
		c.Identity.MaxSlugLength = defaultMaxSlugLength
	}
	if c.Identity.SuffixLength <= 0 {
		c.Identity.SuffixLength = defaultSuffixLength
	}
}

func (c *Config) normalizeValidation() {
	if len(c.Validation.Weights) == 0 {
		c.Validation.Weights = DefaultWeights()
	}
}

func (c *Config) normalizeReview() {
	if c.Review.DefaultSLAHours <= 0 {
		c.Review.DefaultSLAHours = defaultSLAHours
	}
	if len(c.Review.SLAHoursByPriority) == 0 {
		c.Review.SLAHoursByPriority = defaultSLALadder()
	}
	if c.Review.StaleAssignmentHours <= 0 {
		c.Review.StaleAssignmentHours = defaultStaleAssignHours
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.SweepInterval <= 0 {
		c.Workflow.SweepInterval = defaultSweepInterval
	}
	if c.Workflow.StoreTimeoutSeconds <= 0 {
		c.Workflow.StoreTimeoutSeconds = defaultStoreTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.Topic = strings.TrimSpace(c.Notifications.Topic)
	if c.Notifications.Topic == "" {
		if value, ok := os.LookupEnv("PRODPIPE_NTFY_TOPIC"); ok {
			c.Notifications.Topic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}
