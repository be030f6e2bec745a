package temporal

import (
	"math"
	"time"
)

// Decay constants, per day. Explicit, dated facts decay ten times slower
// than inferred, vague ones.
const (
	GeneralDecayRate = 0.1
	DatedDecayRate   = 0.01
)

// Confidence models belief strength in a fact or link that decays over
// time and can be reinforced by corroborating evidence. It is a value
// type: only Reinforce mutates it.
type Confidence struct {
	Initial        float64
	LastReinforced time.Time
	Reinforcements int
	DecayRate      float64 // per day
}

// NewConfidence creates a general belief decaying at GeneralDecayRate.
func NewConfidence(initial float64, at time.Time) Confidence {
	return Confidence{
		Initial:        clampUnit(initial),
		LastReinforced: at,
		DecayRate:      GeneralDecayRate,
	}
}

// NewDatedConfidence creates a belief backed by an explicit target date,
// decaying at DatedDecayRate.
func NewDatedConfidence(initial float64, at time.Time) Confidence {
	c := NewConfidence(initial, at)
	c.DecayRate = DatedDecayRate
	return c
}

// At returns the decayed confidence at the given instant:
// initial * exp(-rate * days since last reinforcement). Elapsed time
// before the last reinforcement counts as zero, so the value is
// monotonically non-increasing without reinforcement.
func (c Confidence) At(now time.Time) float64 {
	days := now.Sub(c.LastReinforced).Hours() / 24
	if days < 0 {
		days = 0
	}
	return clampUnit(c.Initial * math.Exp(-c.DecayRate*days))
}

// Reinforce bumps the belief by the strength of new corroborating
// evidence, resets the decay clock and counts the reinforcement.
// The result stays inside [0,1] for any strength input.
func (c *Confidence) Reinforce(strength float64, now time.Time) {
	c.Initial = clampUnit(c.Initial + strength)
	c.LastReinforced = now
	c.Reinforcements++
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
