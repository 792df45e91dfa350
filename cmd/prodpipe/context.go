package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"prodpipe/internal/config"
	"prodpipe/internal/identity"
	"prodpipe/internal/logging"
	"prodpipe/internal/review"
	"prodpipe/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the pipeline store for one command invocation and closes
// it when the command returns. The context carries the configured store
// operation timeout.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store, cfg *config.Config) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Workflow.StoreTimeoutSeconds)*time.Second)
	defer cancel()

	return fn(ctx, st, cfg)
}

// withReviews runs fn against a review manager backed by a per-invocation
// store. CLI commands print their results; manager logging stays silent.
func (c *commandContext) withReviews(cmd *cobra.Command, fn func(ctx context.Context, reviews *review.Manager) error) error {
	return c.withStore(cmd, func(ctx context.Context, st *store.Store, cfg *config.Config) error {
		return fn(ctx, review.NewManager(st, cfg.Review, logging.NewNop()))
	})
}

func (c *commandContext) generator(st *store.Store, cfg *config.Config) *identity.Generator {
	return identity.NewGenerator(st, cfg.Identity)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
