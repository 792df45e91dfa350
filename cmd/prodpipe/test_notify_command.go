package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prodpipe/internal/notifications"
)

func newTestNotifyCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.Topic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications are not configured; set notifications.topic")
				return nil
			}

			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
