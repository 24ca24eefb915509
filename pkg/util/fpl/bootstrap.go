package fpl

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/richard-senior/fplodds/internal/logger"
)

// Compile-time checks that the bootstrap models implement Persistable
var _ Persistable = (*Player)(nil)
var _ Persistable = (*Team)(nil)

// Player is a single entry from the bootstrap elements table.
// Static per season snapshot; immutable within a run.
type Player struct {
	ID          int    `json:"id" column:"id" dbtype:"INTEGER" primary:"true" index:"true"`
	FirstName   string `json:"first_name" column:"first_name" dbtype:"TEXT"`
	SecondName  string `json:"second_name" column:"second_name" dbtype:"TEXT NOT NULL"`
	TeamID      int    `json:"team" column:"team_id" dbtype:"INTEGER DEFAULT -1" index:"true"`
	ElementType int    `json:"element_type" column:"element_type" dbtype:"INTEGER DEFAULT -1"`
	NowCost     int    `json:"now_cost" column:"now_cost" dbtype:"INTEGER DEFAULT -1"`
	TotalPoints int    `json:"total_points" column:"total_points" dbtype:"INTEGER DEFAULT 0"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// Name returns the player's full name
func (p *Player) Name() string {
	if p.FirstName == "" {
		return p.SecondName
	}
	return p.FirstName + " " + p.SecondName
}

// GetTableName returns the table name for players
func (p *Player) GetTableName() string {
	return "players"
}

// GetPrimaryKey returns the primary key as a map
func (p *Player) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"id": p.ID,
	}
}

// BeforeSave is called before saving the player
func (p *Player) BeforeSave() error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// Team is a single entry from the bootstrap teams table, carrying the
// home/away strength ratings used as model features (roughly 1000-1500 scale)
type Team struct {
	ID        int    `json:"id" column:"id" dbtype:"INTEGER" primary:"true" index:"true"`
	Name      string `json:"name" column:"name" dbtype:"TEXT NOT NULL" index:"true"`
	ShortName string `json:"short_name" column:"short_name" dbtype:"TEXT"`

	StrengthOverallHome int `json:"strength_overall_home" column:"strength_overall_home" dbtype:"INTEGER DEFAULT -1"`
	StrengthOverallAway int `json:"strength_overall_away" column:"strength_overall_away" dbtype:"INTEGER DEFAULT -1"`
	StrengthAttackHome  int `json:"strength_attack_home" column:"strength_attack_home" dbtype:"INTEGER DEFAULT -1"`
	StrengthAttackAway  int `json:"strength_attack_away" column:"strength_attack_away" dbtype:"INTEGER DEFAULT -1"`
	StrengthDefenceHome int `json:"strength_defence_home" column:"strength_defence_home" dbtype:"INTEGER DEFAULT -1"`
	StrengthDefenceAway int `json:"strength_defence_away" column:"strength_defence_away" dbtype:"INTEGER DEFAULT -1"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// OverallStrength averages the home and away overall ratings
func (t *Team) OverallStrength() float64 {
	return (float64(t.StrengthOverallHome) + float64(t.StrengthOverallAway)) / 2.0
}

// GetTableName returns the table name for teams
func (t *Team) GetTableName() string {
	return "teams"
}

// GetPrimaryKey returns the primary key as a map
func (t *Team) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"id": t.ID,
	}
}

// BeforeSave is called before saving the team
func (t *Team) BeforeSave() error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

// ElementType is a position (GKP/DEF/MID/FWD) from the bootstrap snapshot
type ElementType struct {
	ID                int    `json:"id"`
	SingularName      string `json:"singular_name"`
	SingularNameShort string `json:"singular_name_short"`
}

// Event is a gameweek entry from the bootstrap snapshot
type Event struct {
	ID       int  `json:"id"`
	Finished bool `json:"finished"`
}

// Bootstrap is the parsed bootstrap-static document
type Bootstrap struct {
	Elements     []*Player      `json:"elements"`
	Teams        []*Team        `json:"teams"`
	ElementTypes []*ElementType `json:"element_types"`
	Events       []*Event       `json:"events"`
}

// ParseBootstrap parses the bootstrap-static JSON document
func ParseBootstrap(data []byte) (*Bootstrap, error) {
	var b Bootstrap
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap data: %w", err)
	}
	if len(b.Elements) == 0 || len(b.Teams) == 0 {
		return nil, fmt.Errorf("bootstrap data contained no players or teams")
	}
	logger.Debug("Parsed bootstrap:", len(b.Elements), "players,", len(b.Teams), "teams")
	return &b, nil
}
