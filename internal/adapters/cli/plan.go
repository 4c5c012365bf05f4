package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/castlebay/warroom-go/internal/application/warplan/commands"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
)

const commandTimeout = 60 * time.Second

// NewPlanCommand creates the plan command group.
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage war plans",
		Long:  `Create, configure, generate, and publish proactive war plans.`,
	}

	cmd.AddCommand(newPlanCreateCommand())
	cmd.AddCommand(newPlanUpdateCommand())
	cmd.AddCommand(newPlanActivateCommand())
	cmd.AddCommand(newPlanArchiveCommand())
	cmd.AddCommand(newPlanAlliancesCommand())
	cmd.AddCommand(newPlanAddTargetCommand())
	cmd.AddCommand(newPlanGenerateCommand())
	cmd.AddCommand(newPlanAssignCommand())
	cmd.AddCommand(newPlanPublishCommand())
	cmd.AddCommand(newPlanShowCommand())

	return cmd
}

func newPlanCreateCommand() *cobra.Command {
	var (
		name               string
		warType            string
		preferredAssignees int
		maxSquadSize       int
		cohesionTolerance  float64
		activityWindow     float64
		suppressCounters   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a war plan in draft state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			plan, err := c.Planner.CreatePlan(ctx, name, campaign.WarType(warType), campaign.Params{
				PreferredAssignees:     preferredAssignees,
				MaxSquadSize:           maxSquadSize,
				CohesionToleranceHours: cohesionTolerance,
				ActivityWindowHours:    activityWindow,
				SuppressCounters:       suppressCounters,
			})
			if err != nil {
				return fmt.Errorf("failed to create plan: %w", err)
			}

			fmt.Printf("Created plan %s (%s)\n", plan.ID, plan.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Plan name (required)")
	cmd.Flags().StringVar(&warType, "war-type", string(campaign.WarTypeOrdinary), "Default war type (ordinary, raid, attrition)")
	cmd.Flags().IntVar(&preferredAssignees, "assignees", 0, "Preferred assignees per target (0 = configured default)")
	cmd.Flags().IntVar(&maxSquadSize, "squad-size", 0, "Maximum squad size (0 = configured default)")
	cmd.Flags().Float64Var(&cohesionTolerance, "cohesion-tolerance", 0, "Cohesion tolerance in hours (0 = configured default)")
	cmd.Flags().Float64Var(&activityWindow, "activity-window", 0, "Activity window in hours (0 = configured default)")
	cmd.Flags().BoolVar(&suppressCounters, "suppress-counters", false, "Suppress reactive counters against this plan's enemies while active")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlanUpdateCommand() *cobra.Command {
	var (
		warType            string
		preferredAssignees int
		maxSquadSize       int
		cohesionTolerance  float64
		activityWindow     float64
		suppressCounters   bool
	)

	cmd := &cobra.Command{
		Use:   "update <plan-id>",
		Short: "Update a plan's tunables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			plan, err := c.Planner.UpdatePlan(ctx, args[0], campaign.Params{
				PreferredAssignees:     preferredAssignees,
				MaxSquadSize:           maxSquadSize,
				CohesionToleranceHours: cohesionTolerance,
				ActivityWindowHours:    activityWindow,
				SuppressCounters:       suppressCounters,
			}, campaign.WarType(warType))
			if err != nil {
				return fmt.Errorf("failed to update plan: %w", err)
			}

			fmt.Printf("Updated plan %s\n", plan.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&warType, "war-type", string(campaign.WarTypeOrdinary), "Default war type")
	cmd.Flags().IntVar(&preferredAssignees, "assignees", 0, "Preferred assignees per target")
	cmd.Flags().IntVar(&maxSquadSize, "squad-size", 0, "Maximum squad size")
	cmd.Flags().Float64Var(&cohesionTolerance, "cohesion-tolerance", 0, "Cohesion tolerance in hours")
	cmd.Flags().Float64Var(&activityWindow, "activity-window", 0, "Activity window in hours")
	cmd.Flags().BoolVar(&suppressCounters, "suppress-counters", false, "Suppress reactive counters")

	return cmd
}

func newPlanActivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <plan-id>",
		Short: "Activate a draft plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			plan, err := c.Planner.Activate(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to activate plan: %w", err)
			}
			fmt.Printf("Plan %s is now %s\n", plan.ID, plan.Status)
			return nil
		},
	}
}

func newPlanArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <plan-id>",
		Short: "Archive a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			plan, err := c.Planner.Archive(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to archive plan: %w", err)
			}
			fmt.Printf("Plan %s is now %s\n", plan.ID, plan.Status)
			return nil
		},
	}
}

func newPlanAlliancesCommand() *cobra.Command {
	var friendly, enemy []int

	cmd := &cobra.Command{
		Use:   "alliances <plan-id>",
		Short: "Set the plan's alliance membership",
		Long:  `Reconciles the plan's friendly and enemy alliance sets to exactly the given IDs.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if cmd.Flags().Changed("friendly") {
				if err := c.Planner.SetAlliances(ctx, args[0], campaign.RoleFriendly, friendly); err != nil {
					return fmt.Errorf("failed to set friendly alliances: %w", err)
				}
			}
			if cmd.Flags().Changed("enemy") {
				if err := c.Planner.SetAlliances(ctx, args[0], campaign.RoleEnemy, enemy); err != nil {
					return fmt.Errorf("failed to set enemy alliances: %w", err)
				}
			}
			fmt.Println("Alliance membership updated")
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&friendly, "friendly", nil, "Friendly alliance IDs")
	cmd.Flags().IntSliceVar(&enemy, "enemy", nil, "Enemy alliance IDs")

	return cmd
}

func newPlanAddTargetCommand() *cobra.Command {
	var warType string

	cmd := &cobra.Command{
		Use:   "add-target <plan-id> <enemy-nation-id>",
		Short: "Attach an enemy nation as a target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enemyID, err := parseIntArg(args[1], "enemy-nation-id")
			if err != nil {
				return err
			}

			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			t, err := c.Planner.AddTarget(ctx, args[0], enemyID, campaign.WarType(warType))
			if err != nil {
				return fmt.Errorf("failed to add target: %w", err)
			}
			fmt.Printf("Added target %d (nation %d)\n", t.ID, t.EnemyNationID)
			return nil
		},
	}

	cmd.Flags().StringVar(&warType, "war-type", "", "War type override (default: campaign's)")
	return cmd
}

func newPlanGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <plan-id>",
		Short: "Regenerate the plan's proposed assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			response, err := c.Mediator.Send(ctx, commands.GenerateAssignmentsCommand{
				CampaignID:   args[0],
				RespectLocks: true,
			})
			if err != nil {
				return fmt.Errorf("failed to generate assignments: %w", err)
			}

			r := response.(commands.GenerateAssignmentsResponse).Result
			fmt.Printf("Scored %d targets: %d proposed, %d preserved, %d removed, %d squads\n",
				r.TargetsScored, r.AssignmentsProposed, r.AssignmentsPreserved, r.AssignmentsRemoved, r.SquadsBuilt)
			return nil
		},
	}
}

func newPlanAssignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <plan-id> <target-id> <nation-id>",
		Short: "Manually assign a friendly nation to a target",
		Long:  `Scores the pair under the manual power curve and stores an overridden assignment that regeneration preserves.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetID, err := parseIntArg(args[1], "target-id")
			if err != nil {
				return err
			}
			nationID, err := parseIntArg(args[2], "nation-id")
			if err != nil {
				return err
			}

			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			a, err := c.Planner.ApplyManualAssignment(ctx, args[0], uint(targetID), nationID)
			if err != nil {
				return fmt.Errorf("failed to assign: %w", err)
			}
			fmt.Printf("Assigned nation %d to target %d (score %.1f)\n", a.NationID, a.TargetID, a.Score)
			return nil
		},
	}
	return cmd
}

func newPlanPublishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <plan-id>",
		Short: "Mark the plan's assignments as published",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := c.Planner.PublishAssignments(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to publish assignments: %w", err)
			}
			fmt.Println("Assignments published")
			return nil
		},
	}
}

func newPlanShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show the plan's targets, assignments, and squads",
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
