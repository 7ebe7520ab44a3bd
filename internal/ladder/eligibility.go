package ladder

// Eligibility limits.
const (
	// MaxRankingDistance is the largest rank gap allowed between opponents
	// when the ladder has the distance penalty enabled.
	MaxRankingDistance = 15
	// MaxMatchesBetweenPair caps how often the same two players can meet in
	// one ladder, in either direction.
	MaxMatchesBetweenPair = 5
)

// CheckEligibility enforces the ladder-window, rank-distance, daily-play and
// per-pair frequency limits for a candidate match. history is the ladder's
// complete match list, read once for the whole request; checks run in order
// and fail fast.
func CheckEligibility(l Ladder, m Match, winner, loser Player, history []Match) error {
	if !l.IsOpen(m.Date) {
		return Errorf(KindInvalidInput, "The ladder is not currently open")
	}

	if l.DistancePenaltyOn {
		d := winner.Ranking - loser.Ranking
		if d < 0 {
			d = -d
		}
		if d > MaxRankingDistance {
			return Errorf(KindInvalidInput, "Players are too far apart in the rankings to challenge one another")
		}
	}

	for _, h := range history {
		if !SameDay(h.Date, m.Date) {
			continue
		}
		if h.WinnerID == m.WinnerID || h.LoserID == m.WinnerID {
			return Errorf(KindInvalidInput, "The winner has already played a match today")
		}
		if h.WinnerID == m.LoserID || h.LoserID == m.LoserID {
			return Errorf(KindInvalidInput, "The loser has already played a match today")
		}
	}

	played := 0
	for _, h := range history {
		samePair := (h.WinnerID == m.WinnerID && h.LoserID == m.LoserID) ||
			(h.WinnerID == m.LoserID && h.LoserID == m.WinnerID)
		if samePair {
			played++
		}
	}
	if played >= MaxMatchesBetweenPair {
		return Errorf(KindInvalidInput, "These players have already played %d times", played)
	}
	return nil
}
