package ladder

// Scoring constants. A winner starts from BasePoints, gives away one point
// per game the loser took, and never drops below MinWinnerPoints.
const (
	BasePoints             = 39
	MinWinnerPoints        = 12
	MaxTiebreakPoints      = 6
	MinTiebreakWinnerScore = 10
	PenaltyMult            = -2
	PremiumMult            = 3
)

// CalculateScores converts a validated match plus the two players' current
// rankings into the point awards for winner and loser. It is pure and
// deterministic: the correction engine relies on replaying it bit-for-bit
// with the same inputs.
func CalculateScores(m Match, winnerRank, loserRank int, distancePenaltyOn bool) (winnerPoints, loserPoints int) {
	loserPoints = m.LoserSet1 + m.LoserSet2

	if m.HasThirdSet() {
		w3, l3 := *m.WinnerSet3, *m.LoserSet3
		if max(w3, l3) >= MinTiebreakWinnerScore {
			// Super-tiebreak: credit half the loser's points, rounded up,
			// capped so a marathon tiebreak is not worth more than a set.
			credit := (l3 + 1) / 2
			if credit > MaxTiebreakPoints {
				credit = MaxTiebreakPoints
			}
			loserPoints += credit
		} else {
			loserPoints += l3
		}
	}

	adjustment := 0
	if distancePenaltyOn {
		adjustment = DistanceAdjustment(winnerRank, loserRank)
	}

	winnerPoints = BasePoints - loserPoints + adjustment
	if winnerPoints < MinWinnerPoints {
		winnerPoints = MinWinnerPoints
	}
	return winnerPoints, loserPoints
}

// DistanceAdjustment is the rank-gap component of the winner's award: beating
// a worse-ranked opponent costs PenaltyMult per rank of distance, beating a
// better-ranked opponent pays PremiumMult per rank.
func DistanceAdjustment(winnerRank, loserRank int) int {
	d := loserRank - winnerRank
	if d > 0 {
		return d * PenaltyMult
	}
	return -d * PremiumMult
}
