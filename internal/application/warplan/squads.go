package warplan

import (
	"context"
	"fmt"
	"sort"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/pkg/utils"
)

// rebuildSquads regroups the campaign's assignments into squads after a
// generation pass. Squads are derived state with this pass as their
// single writer: preserved rows keep a still-valid squad, every other
// row is re-placed, empty squads are deleted, and cohesion is recomputed
// from member scores.
func (g *Generator) rebuildSquads(
	ctx context.Context,
	repos campaign.Repos,
	camp *campaign.Campaign,
	prevSquad map[int]*uint,
) (int, error) {
	assignments, err := repos.Assignments.ListByCampaign(ctx, camp.ID)
	if err != nil {
		return 0, err
	}
	squads, err := repos.Squads.ListByCampaign(ctx, camp.ID)
	if err != nil {
		return 0, err
	}

	squadByID := make(map[uint]*campaign.Squad, len(squads))
	byTarget := make(map[uint][]*campaign.Squad)
	for _, s := range squads {
		squadByID[s.ID] = s
		byTarget[s.TargetID] = append(byTarget[s.TargetID], s)
	}

	members := make(map[uint][]*campaign.Assignment)
	maxSize := camp.Params.MaxSquadSize

	// Preserved rows keep their squad as long as it still serves their
	// target and has room under the configured size. A shrunken size
	// bound spills the overflow through the normal placement path below.
	var unplaced []*campaign.Assignment
	for _, a := range assignments {
		if a.Preserved() && a.SquadID != nil {
			if s, ok := squadByID[*a.SquadID]; ok && s.TargetID == a.TargetID && len(members[s.ID]) < maxSize {
				members[s.ID] = append(members[s.ID], a)
				continue
			}
		}
		unplaced = append(unplaced, a)
	}

	sort.Slice(unplaced, func(i, j int) bool {
		if unplaced[i].TargetID != unplaced[j].TargetID {
			return unplaced[i].TargetID < unplaced[j].TargetID
		}
		return unplaced[i].ID < unplaced[j].ID
	})

	hasRoom := func(id uint) bool { return len(members[id]) < maxSize }

	for _, a := range unplaced {
		var home *campaign.Squad

		// A former squadmate goes back to its old squad when it still
		// serves the same target and has room.
		if prev := prevSquad[a.NationID]; prev != nil {
			if s, ok := squadByID[*prev]; ok && s.TargetID == a.TargetID && hasRoom(s.ID) {
				home = s
			}
		}
		if home == nil {
			for _, s := range byTarget[a.TargetID] {
				if hasRoom(s.ID) {
					home = s
					break
				}
			}
		}
		if home == nil {
			round := len(byTarget[a.TargetID]) + 1
			home = &campaign.Squad{
				CampaignID: camp.ID,
				TargetID:   a.TargetID,
				Label:      fmt.Sprintf("Squad %d", round),
				Round:      round,
			}
			if err := repos.Squads.Save(ctx, home); err != nil {
				return 0, err
			}
			squadByID[home.ID] = home
			byTarget[a.TargetID] = append(byTarget[a.TargetID], home)
		}

		id := home.ID
		a.SquadID = &id
		members[id] = append(members[id], a)
		if err := repos.Assignments.Save(ctx, a); err != nil {
			return 0, err
		}
	}

	var emptyIDs []uint
	built := 0
	for _, s := range squadByID {
		group := members[s.ID]
		if len(group) == 0 {
			emptyIDs = append(emptyIDs, s.ID)
			continue
		}
		scores := make([]float64, 0, len(group))
		for _, a := range group {
			scores = append(scores, a.Score)
		}
		s.Cohesion = utils.Mean(scores)
		if err := repos.Squads.Save(ctx, s); err != nil {
			return 0, err
		}
		built++
	}
	if err := repos.Squads.DeleteByIDs(ctx, emptyIDs); err != nil {
		return 0, err
	}
	return built, nil
}
