package ladder

// Validate checks a reported match for structural and semantic problems.
// Rules run in order and fail fast with a distinct reason. It has no side
// effects; a nil return means the match value is safe to score and persist.
func (m Match) Validate() error {
	if m.LadderID == 0 {
		return Errorf(KindInvalidInput, "Missing ladder_id")
	}
	if m.Date.IsZero() {
		return Errorf(KindInvalidInput, "Missing match_date")
	}
	if m.WinnerID == "" {
		return Errorf(KindInvalidInput, "Missing winner_id")
	}
	if m.LoserID == "" {
		return Errorf(KindInvalidInput, "Missing loser_id")
	}
	if m.WinnerID == m.LoserID {
		return Errorf(KindInvalidInput, "A match cannot be played against oneself")
	}
	if !IsValidSet(m.WinnerSet1, m.LoserSet1) {
		return Errorf(KindInvalidInput, "Invalid scores for set 1")
	}
	if !IsValidSet(m.WinnerSet2, m.LoserSet2) {
		return Errorf(KindInvalidInput, "Invalid scores for set 2")
	}
	if (m.WinnerSet3 == nil) != (m.LoserSet3 == nil) {
		return Errorf(KindInvalidInput, "Invalid scores for set 3")
	}
	if m.HasThirdSet() {
		if !IsValidSet(*m.WinnerSet3, *m.LoserSet3) && !IsValidTiebreak(*m.WinnerSet3, *m.LoserSet3) {
			return Errorf(KindInvalidInput, "Invalid scores for set 3")
		}
	}

	winnerSets, loserSets := m.setsWon()
	if loserSets >= 2 {
		return Errorf(KindInvalidInput, "Only winners can report match results")
	}
	if m.HasThirdSet() && winnerSets == 3 {
		return Errorf(KindInvalidInput, "A best-of-three match cannot have the same player win all three sets")
	}
	return nil
}

// IsValidSet reports whether a pair of game counts encodes a legal tennis
// set, regardless of which side is listed first. Legal sets end 6-0 through
// 6-4, or 7-5 and 7-6.
func IsValidSet(a, b int) bool {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi == 6 {
		return lo >= 0 && lo <= 4
	}
	if hi == 7 {
		return lo == 5 || lo == 6
	}
	return false
}

// IsValidTiebreak reports whether the scores encode a legal super-tiebreak
// from the winner's perspective: first to 10, win by 2.
func IsValidTiebreak(winner, loser int) bool {
	if winner == 10 {
		return loser >= 0 && loser <= 8
	}
	return winner > 10 && loser == winner-2
}

// setsWon counts, per recorded set, how many each side took. Sets are never
// tied once validated, so a simple comparison is enough.
func (m Match) setsWon() (winner, loser int) {
	countSet := func(w, l int) {
		if w > l {
			winner++
		} else {
			loser++
		}
	}
	countSet(m.WinnerSet1, m.LoserSet1)
	countSet(m.WinnerSet2, m.LoserSet2)
	if m.HasThirdSet() {
		countSet(*m.WinnerSet3, *m.LoserSet3)
	}
	return winner, loser
}
