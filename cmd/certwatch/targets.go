package main

import (
	"errors"
	"fmt"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <owner>",
		Short: "Register an owner with an empty target list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeStore, err := a.newManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := manager.EnsureOwner(cmd.Context(), models.Owner(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Owner %s registered.\n", args[0])
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <owner> <target>",
		Short: "Start monitoring a URL or local file for an owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeStore, err := a.newManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			target, err := manager.AddTarget(cmd.Context(), models.Owner(args[0]), args[1])
			switch {
			case errors.Is(err, models.ErrDuplicateTarget):
				fmt.Fprintf(cmd.OutOrStdout(), "Target %s is already on the list.\n", models.NormalizeTarget(args[1]))
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target %s added.\n", target)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <owner> <target>",
		Short: "Stop monitoring a target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeStore, err := a.newManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			err = manager.RemoveTarget(cmd.Context(), models.Owner(args[0]), args[1])
			switch {
			case errors.Is(err, models.ErrNoTargets):
				fmt.Fprintln(cmd.OutOrStdout(), "There are no targets to remove.")
				return nil
			case errors.Is(err, models.ErrTargetNotFound):
				fmt.Fprintf(cmd.OutOrStdout(), "Target %s is not on the list.\n", models.NormalizeTarget(args[1]))
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target %s removed.\n", models.NormalizeTarget(args[1]))
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <owner>",
		Short: "List the targets monitored for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeStore, err := a.newManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			targets, err := manager.ListTargets(cmd.Context(), models.Owner(args[0]))
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The list is empty.")
				return nil
			}
			for i, t := range targets {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, t)
			}
			return nil
		},
	}
}
