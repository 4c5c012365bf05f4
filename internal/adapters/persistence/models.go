package persistence

import (
	"time"
)

// CampaignModel represents the campaigns table
type CampaignModel struct {
	ID             string     `gorm:"column:id;primaryKey;not null"`
	Name           string     `gorm:"column:name;not null"`
	Kind           string     `gorm:"column:kind;not null"`
	Status         string     `gorm:"column:status;not null;default:'draft'"`
	DefaultWarType string     `gorm:"column:default_war_type;not null"`

	PreferredAssignees     int     `gorm:"column:preferred_assignees;not null"`
	MaxSquadSize           int     `gorm:"column:max_squad_size;not null"`
	CohesionToleranceHours float64 `gorm:"column:cohesion_tolerance_hours;not null"`
	ActivityWindowHours    float64 `gorm:"column:activity_window_hours;not null"`
	SuppressCounters       bool    `gorm:"column:suppress_counters;not null;default:false"`

	AggressorNationID int `gorm:"column:aggressor_nation_id"`

	AssignmentsPublishedAt *time.Time `gorm:"column:assignments_published_at"`
	CreatedAt              time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt              time.Time  `gorm:"column:updated_at;not null"`
}

func (CampaignModel) TableName() string {
	return "campaigns"
}

// CampaignAllianceModel represents the campaign_alliances membership table
type CampaignAllianceModel struct {
	CampaignID string         `gorm:"column:campaign_id;primaryKey;not null"`
	Campaign   *CampaignModel `gorm:"foreignKey:CampaignID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AllianceID int            `gorm:"column:alliance_id;primaryKey;not null"`
	Role       string         `gorm:"column:role;primaryKey;not null"`
}

func (CampaignAllianceModel) TableName() string {
	return "campaign_alliances"
}

// TargetModel represents the targets table.
// Unique key (campaign_id, enemy_nation_id) prevents duplicate targets.
type TargetModel struct {
	ID                 uint           `gorm:"column:id;primaryKey;autoIncrement"`
	CampaignID         string         `gorm:"column:campaign_id;not null;uniqueIndex:idx_targets_campaign_enemy"`
	Campaign           *CampaignModel `gorm:"foreignKey:CampaignID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	EnemyNationID      int            `gorm:"column:enemy_nation_id;not null;uniqueIndex:idx_targets_campaign_enemy"`
	Priority           float64        `gorm:"column:priority;not null;default:0"`
	PriorityBreakdown  string         `gorm:"column:priority_breakdown;type:text"` // JSON factor list
	PriorityComputedAt *time.Time     `gorm:"column:priority_computed_at"`
	WarType            string         `gorm:"column:war_type;not null"`
}

func (TargetModel) TableName() string {
	return "targets"
}

// AssignmentModel represents the assignments table.
// Unique key (target_id, nation_id) makes duplicate assignments for a
// pair structurally impossible; writes go through an upsert on that key.
type AssignmentModel struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement"`
	CampaignID string         `gorm:"column:campaign_id;not null;index"`
	Campaign   *CampaignModel `gorm:"foreignKey:CampaignID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TargetID   uint           `gorm:"column:target_id;not null;uniqueIndex:idx_assignments_target_nation"`
	Target     *TargetModel   `gorm:"foreignKey:TargetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	NationID   int            `gorm:"column:nation_id;not null;uniqueIndex:idx_assignments_target_nation"`

	Score     float64 `gorm:"column:score;not null;default:0"`
	Breakdown string  `gorm:"column:breakdown;type:text"` // JSON factor list

	Status     string `gorm:"column:status;not null;default:'proposed'"`
	IsLocked   bool   `gorm:"column:is_locked;not null;default:false"`
	IsOverridden bool `gorm:"column:is_overridden;not null;default:false"`

	SquadID *uint       `gorm:"column:squad_id"`
	Squad   *SquadModel `gorm:"foreignKey:SquadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (AssignmentModel) TableName() string {
	return "assignments"
}

// SquadModel represents the squads table
type SquadModel struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement"`
	CampaignID string         `gorm:"column:campaign_id;not null;index"`
	Campaign   *CampaignModel `gorm:"foreignKey:CampaignID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TargetID   uint           `gorm:"column:target_id;not null;index"`
	Label      string         `gorm:"column:label;not null"`
	Round      int            `gorm:"column:round;not null;default:1"`
	Cohesion   float64        `gorm:"column:cohesion;not null;default:0"`
}

func (SquadModel) TableName() string {
	return "squads"
}

// NationModel represents the nations intel table, written by the sync
// layer and read-only to this engine.
type NationModel struct {
	ID         int    `gorm:"column:id;primaryKey"`
	Name       string `gorm:"column:name;not null"`
	AllianceID int    `gorm:"column:alliance_id;not null;index"`
	Position   int    `gorm:"column:position;not null;default:1"`

	Cities int     `gorm:"column:cities;not null"`
	Score  float64 `gorm:"column:score;not null"`

	Soldiers int `gorm:"column:soldiers;not null;default:0"`
	Tanks    int `gorm:"column:tanks;not null;default:0"`
	Aircraft int `gorm:"column:aircraft;not null;default:0"`
	Ships    int `gorm:"column:ships;not null;default:0"`

	Projects string `gorm:"column:projects;type:text"` // JSON array of slugs

	LastActive *time.Time `gorm:"column:last_active"`

	OffensiveWars     int `gorm:"column:offensive_wars;not null;default:0"`
	DefensiveWars     int `gorm:"column:defensive_wars;not null;default:0"`
	RecentWarDeclares int `gorm:"column:recent_war_declares;not null;default:0"`

	WarWins        int     `gorm:"column:war_wins;not null;default:0"`
	InfraDestroyed float64 `gorm:"column:infra_destroyed;not null;default:0"`

	Beige        bool `gorm:"column:beige;not null;default:false"`
	VacationMode bool `gorm:"column:vacation_mode;not null;default:false"`
}

func (NationModel) TableName() string {
	return "nations"
}

// WarModel represents the wars read model. A war is active while
// ended_at is null.
type WarModel struct {
	ID         int        `gorm:"column:id;primaryKey"`
	AttackerID int        `gorm:"column:attacker_id;not null;index"`
	DefenderID int        `gorm:"column:defender_id;not null;index"`
	WarType    string     `gorm:"column:war_type"`
	DeclaredAt time.Time  `gorm:"column:declared_at;not null"`
	EndedAt    *time.Time `gorm:"column:ended_at"`
}

func (WarModel) TableName() string {
	return "wars"
}
