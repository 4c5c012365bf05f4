package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCounterCommand creates the counter command group.
func NewCounterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Manage reactive counter campaigns",
		Long:  `Propose, regenerate, finalize, and archive counters against aggressors.`,
	}

	cmd.AddCommand(newCounterProposeCommand())
	cmd.AddCommand(newCounterRegenerateCommand())
	cmd.AddCommand(newCounterFinalizeCommand())
	cmd.AddCommand(newCounterArchiveCommand())
	cmd.AddCommand(newCounterShowCommand())

	return cmd
}

func newCounterProposeCommand() *cobra.Command {
	var aggressorID, defenderID int

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose a counter against an aggressor",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			camp, suppressed, err := c.Counters.Propose(ctx, aggressorID, defenderID)
			if err != nil {
				return fmt.Errorf("failed to propose counter: %w", err)
			}
			if suppressed {
				fmt.Println("Counter suppressed by an active war plan")
				return nil
			}
			fmt.Printf("Created counter %s (%s)\n", camp.ID, camp.Status)
			return printCampaign(ctx, c, camp.ID)
		},
	}

	cmd.Flags().IntVar(&aggressorID, "aggressor", 0, "Aggressor nation ID (required)")
	cmd.Flags().IntVar(&defenderID, "defender", 0, "Defender nation ID (required)")
	_ = cmd.MarkFlagRequired("aggressor")
	_ = cmd.MarkFlagRequired("defender")

	return cmd
}

func newCounterRegenerateCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "regenerate <counter-id>",
		Short: "Rebuild a draft counter's proposed team from current intel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			r, err := c.Counters.Regenerate(ctx, args[0], !force)
			if err != nil {
				return fmt.Errorf("failed to regenerate counter: %w", err)
			}
			fmt.Printf("Proposed %d, preserved %d, removed %d\n", r.Proposed, r.Preserved, r.Removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace locked and overridden rows too")

	return cmd
}

func newCounterFinalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <counter-id>",
		Short: "Confirm the counter team and activate the campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			camp, err := c.Counters.Finalize(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to finalize counter: %w", err)
			}
			fmt.Printf("Counter %s is now %s\n", camp.ID, camp.Status)
			return printCampaign(ctx, c, camp.ID)
		},
	}
}

func newCounterArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <counter-id>",
		Short: "Archive a counter campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			camp, err := c.Counters.Archive(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to archive counter: %w", err)
			}
			fmt.Printf("Counter %s is now %s\n", camp.ID, camp.Status)
			return nil
		},
	}
}

func newCounterShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <counter-id>",
		Short: "Show the counter's target and team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			return printCampaign(ctx, c, args[0])
		},
	}
}
