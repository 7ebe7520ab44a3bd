package ladder

import "time"

// User is an account, created on first successful authentication. ID is the
// stable identifier issued by the identity provider and never changes.
type User struct {
	ID           string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	Availability string `json:"availability_text,omitempty"`
	Admin        bool   `json:"admin"`
}

// Ladder is a time-boxed round-robin competition. Everything except
// WeeksForBorrowedPointsLeft is immutable after creation; only the decay job
// advances that counter.
type Ladder struct {
	ID                         int64     `json:"ladder_id"`
	Name                       string    `json:"name"`
	StartDate                  time.Time `json:"start_date"`
	EndDate                    time.Time `json:"end_date"`
	DistancePenaltyOn          bool      `json:"distance_penalty_on"`
	WeeksForBorrowedPoints     int       `json:"weeks_for_borrowed_points"`
	WeeksForBorrowedPointsLeft int       `json:"weeks_for_borrowed_points_left"`
}

// IsOpen reports whether the ladder is accepting matches on the given day.
// The window is inclusive on both ends and compares calendar dates only.
func (l Ladder) IsOpen(now time.Time) bool {
	today := dateOnly(now)
	return !today.Before(dateOnly(l.StartDate)) && !today.After(dateOnly(l.EndDate))
}

// OpensAfter reports whether the ladder has not started yet.
func (l Ladder) OpensAfter(now time.Time) bool {
	return dateOnly(now).Before(dateOnly(l.StartDate))
}

// WeeksSinceStart returns the number of whole weeks elapsed since the start
// date, which drives the borrowed-points decay schedule.
func (l Ladder) WeeksSinceStart(now time.Time) int {
	days := int(dateOnly(now).Sub(dateOnly(l.StartDate)).Hours() / 24)
	return days / 7
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// Player ties a User to a Ladder together with their standing in it.
// Score, Ranking, Wins and Losses are derived read-side by the repository.
type Player struct {
	User           User  `json:"user"`
	LadderID       int64 `json:"ladder_id"`
	EarnedPoints   int   `json:"earned_points"`
	BorrowedPoints int   `json:"borrowed_points"`
	Score          int   `json:"score"`
	Ranking        int   `json:"ranking"`
	Wins           int   `json:"wins"`
	Losses         int   `json:"losses"`
}

// PlayerOrder assigns a manual rank to a player, used only before a ladder
// opens.
type PlayerOrder struct {
	UserID string `json:"user_id"`
	Rank   int    `json:"rank"`
}

// PlayerPoints assigns a borrowed-points value to a player.
type PlayerPoints struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
}

// Match is a reported result between two players in a ladder. The third set
// is optional and may be either a normal set or a super-tiebreak.
// WinnerPoints/LoserPoints record the awards actually given at report time.
type Match struct {
	ID           int64     `json:"match_id,omitempty"`
	LadderID     int64     `json:"ladder_id"`
	Date         time.Time `json:"match_date"`
	WinnerID     string    `json:"winner_id"`
	LoserID      string    `json:"loser_id"`
	WinnerSet1   int       `json:"winner_set1_score"`
	LoserSet1    int       `json:"loser_set1_score"`
	WinnerSet2   int       `json:"winner_set2_score"`
	LoserSet2    int       `json:"loser_set2_score"`
	WinnerSet3   *int      `json:"winner_set3_score,omitempty"`
	LoserSet3    *int      `json:"loser_set3_score,omitempty"`
	WinnerPoints int       `json:"winner_points"`
	LoserPoints  int       `json:"loser_points"`

	// Attached on read paths only, never persisted from here.
	Winner *Player `json:"winner,omitempty"`
	Loser  *Player `json:"loser,omitempty"`
}

// HasThirdSet reports whether a third set was recorded.
func (m Match) HasThirdSet() bool {
	return m.WinnerSet3 != nil && m.LoserSet3 != nil
}
