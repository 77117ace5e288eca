package models

import "time"

// WeeklyReport is the fleet digest archived in MongoDB and sent to the
// fleet manager.
type WeeklyReport struct {
	Start          time.Time       `bson:"start" json:"start"`
	End            time.Time       `bson:"end" json:"end"`
	FleetSize      int             `bson:"fleet_size" json:"fleet_size"`
	NonOperational []string        `bson:"non_operational" json:"non_operational"`
	DueMaintenance []string        `bson:"due_maintenance" json:"due_maintenance"`
	FleetValue     float64         `bson:"fleet_value" json:"fleet_value"`
	Operations     int             `bson:"operations" json:"operations"`
	Outcomes       map[Outcome]int `bson:"outcomes" json:"outcomes"`
	LedgerStatus   string          `bson:"ledger_status" json:"ledger_status"`
	Text           string          `bson:"text" json:"text"`
	CreatedAt      time.Time       `bson:"created_at" json:"created_at"`
}
