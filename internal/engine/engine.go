// Package engine replicates the operational scanning store into the
// denormalized management replica and maintains daily rollup
// statistics. One run executes user, session and screen
// synchronization in that order, then recomputes today's statistics
// and appends a run-log row.
package engine

import "time"

// Counters reports the outcome of one sync phase.
type Counters struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

func (c Counters) processed() int {
	return c.Created + c.Updated
}

func (c Counters) add(other Counters) Counters {
	return Counters{
		Created: c.Created + other.Created,
		Updated: c.Updated + other.Updated,
		Errors:  c.Errors + other.Errors,
	}
}

// RunSummary aggregates the per-phase counters of one full sync run.
type RunSummary struct {
	Users      Counters      `json:"users"`
	Sessions   Counters      `json:"sessions"`
	Screens    Counters      `json:"screens"`
	Statistics Counters      `json:"statistics"`
	Duration   time.Duration `json:"duration"`
}

// Totals folds every phase into one counter set.
func (s RunSummary) Totals() Counters {
	return s.Users.add(s.Sessions).add(s.Screens).add(s.Statistics)
}
