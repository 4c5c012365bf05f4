package campaign

// Squad groups assignments that share a target and are meant to act
// together. Squads are derived state: the rebuild pass after every
// regeneration is their single writer.
type Squad struct {
	ID         uint
	CampaignID string
	TargetID   uint

	Label string
	Round int

	// Cohesion is the mean match score of member assignments.
	Cohesion float64
}
