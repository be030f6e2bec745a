package temporal

import (
	"math"
	"testing"
	"time"
)

func TestConfidenceDecay(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewConfidence(1.0, start)

	got := c.At(start.Add(10 * 24 * time.Hour))
	want := math.Exp(-0.1 * 10)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("At(+10d) = %v, want %v", got, want)
	}
}

func TestDatedConfidenceDecaysSlower(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	later := start.Add(30 * 24 * time.Hour)

	general := NewConfidence(0.9, start)
	dated := NewDatedConfidence(0.9, start)

	if dated.At(later) <= general.At(later) {
		t.Fatalf("dated confidence %v should outlast general %v after 30 days",
			dated.At(later), general.At(later))
	}
}

func TestConfidenceBeforeLastReinforcement(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewConfidence(0.8, start)

	if got := c.At(start.Add(-48 * time.Hour)); got != 0.8 {
		t.Fatalf("At before reinforcement = %v, want undecayed 0.8", got)
	}
}

func TestReinforceClampsAndResetsClock(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewConfidence(0.9, start)

	bump := start.Add(20 * 24 * time.Hour)
	c.Reinforce(0.5, bump)

	if c.Initial != 1.0 {
		t.Fatalf("Initial after overshoot reinforce = %v, want 1.0", c.Initial)
	}
	if !c.LastReinforced.Equal(bump) {
		t.Fatalf("LastReinforced = %v, want %v", c.LastReinforced, bump)
	}
	if c.Reinforcements != 1 {
		t.Fatalf("Reinforcements = %d, want 1", c.Reinforcements)
	}
	if got := c.At(bump); got != 1.0 {
		t.Fatalf("At(reinforce instant) = %v, want 1.0", got)
	}
}

func TestReinforceNegativeStrengthClampsAtZero(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewConfidence(0.3, start)
	c.Reinforce(-2, start)

	if c.Initial != 0 {
		t.Fatalf("Initial after negative reinforce = %v, want 0", c.Initial)
	}
}
