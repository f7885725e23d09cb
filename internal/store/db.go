// Package store persists simulation run reports. Round history is
// deliberately not stored; only aggregate simulation results are.
package store

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("store: run not found")

// DB is the persistence interface for simulation runs.
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *Run) error
	GetRun(id string) (*Run, error)
	ListRuns(limit, offset int) ([]Run, error)
}

// Run is one persisted simulation run.
type Run struct {
	ID            string    `json:"id"`
	Model         string    `json:"model"`
	Seed          uint32    `json:"seed"`
	Spins         int       `json:"spins"`
	Strategy      string    `json:"strategy"`
	RealizedRTP   float64   `json:"realized_rtp"`
	HitRate       float64   `json:"hit_rate"`
	MaxMultiplier float64   `json:"max_multiplier"`
	TotalWagered  float64   `json:"total_wagered"`
	TotalReturned float64   `json:"total_returned"`
	ReportJSON    string    `json:"report_json"`
	EngineVersion string    `json:"engine_version"`
	CreatedAt     time.Time `json:"created_at"`
}
