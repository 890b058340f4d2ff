package tracker

import "testing"

func TestStreakTracker(t *testing.T) {
	var s StreakTracker

	// W W L W L L L
	outcomes := []bool{true, true, false, true, false, false, false}
	for _, won := range outcomes {
		s.Update(won)
	}

	analysis := s.Analysis()
	if analysis.CurrentStreak != -3 {
		t.Errorf("current streak = %d, want -3", analysis.CurrentStreak)
	}
	if analysis.MaxWinStreak != 2 {
		t.Errorf("max win streak = %d, want 2", analysis.MaxWinStreak)
	}
	if analysis.MaxLossStreak != 3 {
		t.Errorf("max loss streak = %d, want 3", analysis.MaxLossStreak)
	}
}

func TestStreakTrackerReversal(t *testing.T) {
	var s StreakTracker

	s.Update(false)
	s.Update(false)
	s.Update(true)

	analysis := s.Analysis()
	if analysis.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want 1 after reversal", analysis.CurrentStreak)
	}
	if analysis.MaxLossStreak != 2 {
		t.Errorf("max loss streak = %d, want 2", analysis.MaxLossStreak)
	}
}

func TestStreakTrackerMaximaNeverDecrease(t *testing.T) {
	var s StreakTracker

	for i := 0; i < 5; i++ {
		s.Update(true)
	}
	s.Update(false)
	s.Update(true)

	if got := s.Analysis().MaxWinStreak; got != 5 {
		t.Errorf("max win streak = %d, want 5", got)
	}
}

func TestStreakTrackerRestore(t *testing.T) {
	var s StreakTracker
	s.restore(-2, 4, 6)

	analysis := s.Analysis()
	if analysis.CurrentStreak != -2 || analysis.MaxWinStreak != 4 || analysis.MaxLossStreak != 6 {
		t.Errorf("restored analysis = %+v, want {-2 4 6}", analysis)
	}

	// A win after a restored loss run starts a fresh +1 streak
	s.Update(true)
	if got := s.Analysis().CurrentStreak; got != 1 {
		t.Errorf("current streak = %d, want 1", got)
	}
}
