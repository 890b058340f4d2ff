package tracker

// StreakTracker follows the current run of wins or losses and the
// all-time maxima of each direction. Max win and max loss streaks are
// tracked independently; the maxima never decrease.
type StreakTracker struct {
	current int
	maxWin  int
	maxLoss int
}

// Update folds one outcome into the streak state. A win extends a
// positive run or starts one at +1; a loss mirrors in the negative
// direction.
func (s *StreakTracker) Update(won bool) {
	if won {
		if s.current > 0 {
			s.current++
		} else {
			s.current = 1
		}
		if s.current > s.maxWin {
			s.maxWin = s.current
		}
		return
	}

	if s.current < 0 {
		s.current--
	} else {
		s.current = -1
	}
	if -s.current > s.maxLoss {
		s.maxLoss = -s.current
	}
}

// Analysis returns the current streak state
func (s *StreakTracker) Analysis() StreakAnalysis {
	return StreakAnalysis{
		CurrentStreak: s.current,
		MaxWinStreak:  s.maxWin,
		MaxLossStreak: s.maxLoss,
	}
}

// restore rebuilds streak state from a snapshot
func (s *StreakTracker) restore(current, maxWin, maxLoss int) {
	s.current = current
	s.maxWin = maxWin
	s.maxLoss = maxLoss
}
