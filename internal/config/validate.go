package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIdentity(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIdentity() error {
	if c.Identity.SuffixLength < 4 || c.Identity.SuffixLength > 10 {
		return errors.New("identity.suffix_length must be between 4 and 10")
	}
	if c.Identity.MaxSlugLength < 8 {
		return errors.New("identity.max_slug_length must be at least 8")
	}
	// namespace + "-" + slug + "-" + suffix must fit.
	minimum := c.Identity.SuffixLength + 8
	if c.Identity.MaxLength < minimum {
		return fmt.Errorf("identity.max_length must be at least %d", minimum)
	}
	return nil
}

func (c *Config) validateValidation() error {
	total := 0.0
	for name, weight := range c.Validation.Weights {
		if weight < 0 {
			return fmt.Errorf("validation.weights.%s must not be negative", name)
		}
		total += weight
	}
	if total <= 0 {
		return errors.New("validation.weights must sum to a positive value")
	}
	if c.Validation.AcceptThreshold < 0 || c.Validation.AcceptThreshold > 1 {
		return errors.New("validation.accept_threshold must be between 0 and 1")
	}
	if c.Validation.ReviewThreshold < 0 || c.Validation.ReviewThreshold > 1 {
		return errors.New("validation.review_threshold must be between 0 and 1")
	}
	if c.Validation.ReviewThreshold > c.Validation.AcceptThreshold {
		return errors.New("validation.review_threshold must not exceed validation.accept_threshold")
	}
	return nil
}

func (c *Config) validateReview() error {
	if c.Review.DefaultSLAHours <= 0 {
		return errors.New("review.default_sla_hours must be positive")
	}
	for i, hours := range c.Review.SLAHoursByPriority {
		if hours <= 0 {
			return fmt.Errorf("review.sla_hours_by_priority[%d] must be positive", i)
		}
	}
	if c.Review.StaleAssignmentHours <= 0 {
		return errors.New("review.stale_assignment_hours must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.sweep_interval":       c.Workflow.SweepInterval,
		"workflow.store_timeout":        c.Workflow.StoreTimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
