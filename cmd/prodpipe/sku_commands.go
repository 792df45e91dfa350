package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"prodpipe/internal/config"
	"prodpipe/internal/identity"
	"prodpipe/internal/store"
)

func newSKUCommand(ctx *commandContext) *cobra.Command {
	skuCmd := &cobra.Command{
		Use:   "sku",
		Short: "Canonical product identifiers",
	}

	skuCmd.AddCommand(newSKUGenerateCommand(ctx))
	skuCmd.AddCommand(newSKUSlugCommand(ctx))

	return skuCmd
}

func newSKUGenerateCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "generate NAMESPACE CODE",
		Short: "Register the canonical identifier for a vendor code",
		Long: "Registers and prints the canonical identifier for a (namespace, code) pair.\n" +
			"Resubmitting the same pair returns the same identifier.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd, func(ctx context.Context, st *store.Store, cfg *config.Config) error {
				sku, resolution, err := cmdCtx.generator(st, cfg).Generate(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, map[string]string{
						"sku":        sku,
						"resolution": string(resolution),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", sku, resolution)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newSKUSlugCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "slug CODE",
		Short: "Show the canonical slug for a raw code without registering it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			slug, err := identity.NewCanonicalizer(cfg.Identity.MaxSlugLength).Canonicalize(args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]string{"slug": slug})
			}
			fmt.Fprintln(cmd.OutOrStdout(), slug)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
