package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

func parseIntArg(raw, name string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, raw)
	}
	return v, nil
}

// printCampaign renders a campaign's targets with their assignments
// grouped underneath, highest priority first.
func printCampaign(ctx context.Context, c *Container, campaignID string) error {
	camp, err := c.Repos.Campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return err
	}
	targets, err := c.Repos.Targets.ListByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	assignments, err := c.Repos.Assignments.ListByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	squads, err := c.Repos.Squads.ListByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s  [%s, %s]\n", camp.Name, camp.Kind, camp.Status)
	fmt.Printf("Targets: %d  Assignments: %d  Squads: %d\n", len(targets), len(assignments), len(squads))

	squadLabels := make(map[uint]string, len(squads))
	for _, s := range squads {
		squadLabels[s.ID] = fmt.Sprintf("%s (cohesion %.1f)", s.Label, s.Cohesion)
	}

	byTarget := make(map[uint][]int)
	for i, a := range assignments {
		byTarget[a.TargetID] = append(byTarget[a.TargetID], i)
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Priority != targets[j].Priority {
			return targets[i].Priority > targets[j].Priority
		}
		return targets[i].ID < targets[j].ID
	})

	for _, t := range targets {
		fmt.Printf("\nTarget %d: nation %d  priority %.1f  [%s]\n", t.ID, t.EnemyNationID, t.Priority, t.WarType)
		for _, i := range byTarget[t.ID] {
			a := assignments[i]
			flags := ""
			if a.Locked {
				flags += " locked"
			}
			if a.Overridden {
				flags += " overridden"
			}
			squad := ""
			if a.SquadID != nil {
				squad = "  " + squadLabels[*a.SquadID]
			}
			fmt.Printf("  nation %-10d score %6.1f  %s%s%s\n", a.NationID, a.Score, a.Status, flags, squad)
		}
	}
	fmt.Println()
	return nil
}
