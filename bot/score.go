package bot

import (
	"github.com/nstehr/deadeye/config"
	"github.com/nstehr/deadeye/model"
)

// Scorer turns entities into a coarse military value. It only needs to rank
// forces against each other, not predict fights.
type Scorer struct {
	cfg   config.Scoring
	w     *World
	intel *intel
}

// TypeScore is the value of a bare unit of type t, ignoring anything it carries.
func (s Scorer) TypeScore(t model.EntityType) int {
	d := t.Data()
	switch {
	case t == model.EntityMiner:
		return s.cfg.Worker
	case t == model.EntityBalloon:
		return s.cfg.Utility
	case d.Heavy:
		return s.cfg.Baseline * s.cfg.HeavyMultiplier
	case t.IsCombat():
		return s.cfg.Baseline
	}
	return 0
}

// Score rates one entity. Bunkers score per occupant, using remembered
// occupancy when we cannot see inside; wagons score as their passengers.
func (s Scorer) Score(e *model.Entity) int {
	switch e.Type {
	case model.EntityBunker:
		occupants := len(e.Garrison)
		if s.w != nil && s.w.Hostile(e) && !s.w.Visible(e) && s.intel != nil {
			if kb, ok := s.intel.Building(e.ID); ok {
				occupants = kb.Occupants
			}
		}
		return occupants * s.cfg.GarrisonOccupant
	case model.EntityWagon:
		total := 0
		for _, id := range e.Garrison {
			if p, ok := s.entity(id); ok {
				total += s.TypeScore(p.Type)
			}
		}
		return total
	}
	return s.TypeScore(e.Type)
}

func (s Scorer) entity(id model.EntityID) (*model.Entity, bool) {
	if s.w == nil {
		return nil, false
	}
	return s.w.Entity(id)
}

// ScoreList sums Score over ids, skipping ids that no longer resolve.
func (s Scorer) ScoreList(list []model.EntityID) int {
	total := 0
	for _, id := range list {
		if e, ok := s.entity(id); ok {
			total += s.Score(e)
		}
	}
	return total
}

// ScoreEntities sums Score over es.
func (s Scorer) ScoreEntities(es []*model.Entity) int {
	total := 0
	for _, e := range es {
		total += s.Score(e)
	}
	return total
}
