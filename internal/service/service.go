package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/opencourt/ladderd/internal/identity"
	"github.com/opencourt/ladderd/internal/ladder"
	"github.com/opencourt/ladderd/internal/pubsub"
)

var _ Service = (*Manager)(nil)

// unknownName is stored when a first-time login carries no profile name.
const unknownName = "Unknown"

// Identify resolves a bearer token to a principal. Any verification failure
// degrades to anonymous rather than failing the request.
func (s *Manager) Identify(token string) *identity.Principal {
	if token == "" {
		return nil
	}
	principal, err := s.identity.Verify(token)
	if err != nil {
		log.Debug("Token verification failed, proceeding as anonymous", "error", err)
		return nil
	}
	return principal
}

// Login verifies the token strictly and returns the caller's user record,
// creating it on first authentication.
func (s *Manager) Login(token string) (*ladder.User, error) {
	principal, err := s.identity.Verify(token)
	if err != nil {
		return nil, ladder.Errorf(ladder.KindUnauthorized, "Invalid credentials")
	}

	u, err := s.store.GetUser(principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u != nil {
		return u, nil
	}

	u = &ladder.User{
		ID:       principal.UserID,
		Name:     principal.Name,
		Email:    principal.Email,
		PhotoURL: principal.PhotoURL,
	}
	if u.Name == "" {
		u.Name = unknownName
	}
	if u.PhotoURL == "" {
		u.PhotoURL = "unset"
	}
	if err := s.store.CreateUser(u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info("Created user on first login", "userID", u.ID)
	return u, nil
}

// requireUser resolves the caller to a stored user or rejects the request.
func (s *Manager) requireUser(caller *identity.Principal) (*ladder.User, error) {
	if caller == nil {
		return nil, ladder.Errorf(ladder.KindUnauthorized, "Authentication required")
	}
	u, err := s.store.GetUser(caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, ladder.Errorf(ladder.KindUnauthorized, "Authentication required")
	}
	return u, nil
}

// canManageLadder reports whether u is a global admin or an admin of the
// given ladder.
func (s *Manager) canManageLadder(u *ladder.User, ladderID int64) (bool, error) {
	if u.Admin {
		return true, nil
	}
	adminIDs, err := s.store.LadderAdminIDs(ladderID)
	if err != nil {
		return false, fmt.Errorf("failed to load ladder admins: %w", err)
	}
	for _, id := range adminIDs {
		if id == u.ID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Manager) GetUser(caller *identity.Principal, id string) (*ladder.User, error) {
	u, err := s.requireUser(caller)
	if err != nil {
		return nil, err
	}

	if u.ID != id && !u.Admin {
		shared, err := s.store.UsersShareLadder(u.ID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check shared ladders: %w", err)
		}
		if !shared {
			return nil, ladder.Errorf(ladder.KindForbidden, "You are not allowed to view this user")
		}
	}

	target, err := s.store.GetUser(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if target == nil {
		return nil, ladder.Errorf(ladder.KindNotFound, "User not found")
	}
	return target, nil
}

// UpdateUser replaces the user's profile. Only the owner may write it; all
// editable fields are taken from the request and the admin flag is never
// touched.
func (s *Manager) UpdateUser(caller *identity.Principal, u ladder.User) (*ladder.User, error) {
	callerUser, err := s.requireUser(caller)
	if err != nil {
		return nil, err
	}
	if callerUser.ID != u.ID {
		return nil, ladder.Errorf(ladder.KindForbidden, "You are not allowed to update this user")
	}

	existing, err := s.store.GetUser(u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if existing == nil {
		return nil, ladder.Errorf(ladder.KindNotFound, "User not found")
	}

	updated := u
	updated.Admin = existing.Admin
	if err := s.store.UpdateUser(&updated); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &updated, nil
}

func (s *Manager) GetLadders(caller *identity.Principal) ([]ladder.Ladder, error) {
	if _, err := s.requireUser(caller); err != nil {
		return nil, err
	}
	ladders, err := s.store.GetLadders()
	if err != nil {
		return nil, fmt.Errorf("failed to load ladders: %w", err)
	}
	return ladders, nil
}

func (s *Manager) GetPlayers(caller *identity.Principal, ladderID int64) ([]ladder.Player, error) {
	if _, err := s.requireUser(caller); err != nil {
		return nil, err
	}
	if _, err := s.getLadder(ladderID); err != nil {
		return nil, err
	}
	players, err := s.store.GetPlayers(ladderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	return players, nil
}

func (s *Manager) getLadder(ladderID int64) (*ladder.Ladder, error) {
	l, err := s.store.GetLadder(ladderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ladder: %w", err)
	}
	if l == nil {
		return nil, ladder.Errorf(ladder.KindNotFound, "Ladder not found")
	}
	return l, nil
}

func (s *Manager) JoinLadder(caller *identity.Principal, ladderID int64, code string) error {
	u, err := s.requireUser(caller)
	if err != nil {
		return err
	}
	if _, err := s.getLadder(ladderID); err != nil {
		return err
	}

	joinCode, err := s.store.LadderJoinCode(ladderID)
	if err != nil {
		return fmt.Errorf("failed to load ladder code: %w", err)
	}
	if joinCode != "" && joinCode != code {
		return ladder.Errorf(ladder.KindForbidden, "Incorrect ladder code")
	}

	existing, err := s.store.GetPlayer(ladderID, u.ID)
	if err != nil {
		return fmt.Errorf("failed to load player: %w", err)
	}
	if existing != nil {
		return ladder.Errorf(ladder.KindInvalidInput, "You have already joined this ladder")
	}

	if err := s.store.CreatePlayer(ladderID, u.ID); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	log.Info("Player joined ladder", "ladderID", ladderID, "userID", u.ID)
	return nil
}

// UpdatePlayerOrder sets the initial standing before a ladder opens. The IDs
// arrive best first; the last listed player gets order hint 1. When
// seedBorrowedPoints is set, each player is granted their order hint times
// the ladder's borrowed point allowance.
func (s *Manager) UpdatePlayerOrder(caller *identity.Principal, ladderID int64, userIDs []string, seedBorrowedPoints bool) error {
	u, err := s.requireUser(caller)
	if err != nil {
		return err
	}
	ok, err := s.canManageLadder(u, ladderID)
	if err != nil {
		return err
	}
	if !ok {
		return ladder.Errorf(ladder.KindForbidden, "Only a ladder admin can reorder players")
	}

	l, err := s.getLadder(ladderID)
	if err != nil {
		return err
	}
	if !l.OpensAfter(s.Now()) {
		return ladder.Errorf(ladder.KindInvalidInput, "The player order can only be changed before the ladder starts")
	}

	order := make([]ladder.PlayerOrder, len(userIDs))
	for i, id := range userIDs {
		order[i] = ladder.PlayerOrder{UserID: id, Rank: len(userIDs) - i}
	}
	if err := s.store.SetPlayerOrder(ladderID, order); err != nil {
		return fmt.Errorf("failed to set player order: %w", err)
	}

	if seedBorrowedPoints && l.WeeksForBorrowedPoints > 0 {
		points := make([]ladder.PlayerPoints, len(order))
		for i, entry := range order {
			points[i] = ladder.PlayerPoints{UserID: entry.UserID, Points: entry.Rank * l.WeeksForBorrowedPoints}
		}
		if err := s.store.SetAllBorrowedPoints(ladderID, points); err != nil {
			return fmt.Errorf("failed to seed borrowed points: %w", err)
		}
	}
	return nil
}

// UpdatePlayer sets a player's borrowed points by hand. The new value must
// already be carried by another player in the ladder, which catches typos
// when an admin moves someone to an existing tier. Zero always passes so an
// allowance can be revoked outright.
func (s *Manager) UpdatePlayer(caller *identity.Principal, ladderID int64, userID string, borrowedPoints int) error {
	u, err := s.requireUser(caller)
	if err != nil {
		return err
	}
	ok, err := s.canManageLadder(u, ladderID)
	if err != nil {
		return err
	}
	if !ok {
		return ladder.Errorf(ladder.KindForbidden, "Only a ladder admin can update players")
	}

	players, err := s.store.GetPlayers(ladderID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}

	var target *ladder.Player
	valid := borrowedPoints == 0
	for i := range players {
		if players[i].User.ID == userID {
			target = &players[i]
		} else if players[i].BorrowedPoints == borrowedPoints {
			valid = true
		}
	}
	if target == nil {
		return ladder.Errorf(ladder.KindNotFound, "Player not found")
	}
	if !valid {
		return ladder.Errorf(ladder.KindInvalidInput, "Borrowed points must match the current value of another player")
	}

	if err := s.store.SetBorrowedPoints(ladderID, userID, borrowedPoints); err != nil {
		return fmt.Errorf("failed to set borrowed points: %w", err)
	}
	return nil
}

func (s *Manager) GetMatches(caller *identity.Principal, ladderID int64, userID string) ([]ladder.Match, error) {
	if _, err := s.requireUser(caller); err != nil {
		return nil, err
	}
	if _, err := s.getLadder(ladderID); err != nil {
		return nil, err
	}

	matches, err := s.store.GetMatches(ladderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	if err := s.attachPlayers(ladderID, matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// attachPlayers resolves winner and loser standings for each match.
func (s *Manager) attachPlayers(ladderID int64, matches []ladder.Match) error {
	if len(matches) == 0 {
		return nil
	}
	players, err := s.store.GetPlayers(ladderID)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	byID := make(map[string]*ladder.Player, len(players))
	for i := range players {
		byID[players[i].User.ID] = &players[i]
	}
	for i := range matches {
		matches[i].Winner = byID[matches[i].WinnerID]
		matches[i].Loser = byID[matches[i].LoserID]
	}
	return nil
}

// ReportMatch validates, checks eligibility, scores and persists a match
// result, then fans out the notification. The match date is taken from the
// server clock, never from the request.
func (s *Manager) ReportMatch(caller *identity.Principal, m ladder.Match) (*ladder.Match, error) {
	start := time.Now()

	u, err := s.requireUser(caller)
	if err != nil {
		return nil, err
	}
	if u.ID != m.WinnerID {
		ok, mErr := s.canManageLadder(u, m.LadderID)
		if mErr != nil {
			return nil, mErr
		}
		if !ok {
			return nil, ladder.Errorf(ladder.KindForbidden, "Only the winner can report a match result")
		}
	}

	// The date is stamped server side; client clocks are not trusted, so a
	// back-dated report cannot slip past the window or daily-play checks.
	m.Date = s.Now()

	if err := m.Validate(); err != nil {
		return nil, err
	}

	l, err := s.getLadder(m.LadderID)
	if err != nil {
		return nil, err
	}

	winner, err := s.store.GetPlayer(m.LadderID, m.WinnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winner: %w", err)
	}
	if winner == nil {
		return nil, ladder.Errorf(ladder.KindInvalidInput, "The winner is not a player in this ladder")
	}
	loser, err := s.store.GetPlayer(m.LadderID, m.LoserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loser: %w", err)
	}
	if loser == nil {
		return nil, ladder.Errorf(ladder.KindInvalidInput, "The loser is not a player in this ladder")
	}

	history, err := s.store.GetMatches(m.LadderID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}
	if err := ladder.CheckEligibility(*l, m, *winner, *loser, history); err != nil {
		return nil, err
	}

	m.WinnerPoints, m.LoserPoints = ladder.CalculateScores(m, winner.Ranking, loser.Ranking, l.DistancePenaltyOn)

	if err := s.store.AddEarnedPoints(m.LadderID, m.WinnerID, m.WinnerPoints); err != nil {
		return nil, fmt.Errorf("failed to award winner points: %w", err)
	}
	if err := s.store.AddEarnedPoints(m.LadderID, m.LoserID, m.LoserPoints); err != nil {
		return nil, fmt.Errorf("failed to award loser points: %w", err)
	}

	created, err := s.store.CreateMatch(&m)
	if err != nil {
		// Take the awards back so a failed insert leaves the standings untouched.
		if rbErr := s.store.AddEarnedPoints(m.LadderID, m.WinnerID, -m.WinnerPoints); rbErr != nil {
			log.Error("Failed to reverse winner points after a failed insert", "error", rbErr, "ladderID", m.LadderID)
		}
		if rbErr := s.store.AddEarnedPoints(m.LadderID, m.LoserID, -m.LoserPoints); rbErr != nil {
			log.Error("Failed to reverse loser points after a failed insert", "error", rbErr, "ladderID", m.LadderID)
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	created.Winner = winner
	created.Loser = loser

	s.metrics.IncMatchesReported()
	s.counters.Increment("matches_reported")
	s.metrics.ObserveReportDuration(time.Since(start).Seconds())
	log.Info("Match reported", "matchID", created.ID, "ladderID", created.LadderID,
		"winner", created.WinnerID, "winnerPoints", created.WinnerPoints,
		"loser", created.LoserID, "loserPoints", created.LoserPoints)

	// The full match travels on the event so the push consumer can notify
	// without another read.
	if err := s.pubsub.SendMessage(pubsub.EventMatchReported, created); err != nil {
		log.Error("Failed to publish match reported event", "error", err, "matchID", created.ID)
	}

	return created, nil
}

// UpdateMatchScores corrects a stored result. The delta is taken between
// rank-neutral recomputes of the old and new set scores, so whatever distance
// adjustment the original report carried is preserved, and the winner total
// is clamped at the floor before the delta is applied.
func (s *Manager) UpdateMatchScores(caller *identity.Principal, matchID int64, scores ladder.Match) (*ladder.Match, error) {
	u, err := s.requireUser(caller)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetMatch(matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if existing == nil {
		return nil, ladder.Errorf(ladder.KindNotFound, "Match not found")
	}

	ok, err := s.canManageLadder(u, existing.LadderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ladder.Errorf(ladder.KindForbidden, "Only a ladder admin can correct match scores")
	}

	updated := *existing
	updated.WinnerSet1 = scores.WinnerSet1
	updated.LoserSet1 = scores.LoserSet1
	updated.WinnerSet2 = scores.WinnerSet2
	updated.LoserSet2 = scores.LoserSet2
	updated.WinnerSet3 = scores.WinnerSet3
	updated.LoserSet3 = scores.LoserSet3
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	oldWinnerPure, oldLoserPure := ladder.CalculateScores(*existing, 0, 0, false)
	newWinnerPure, newLoserPure := ladder.CalculateScores(updated, 0, 0, false)

	winnerDelta := newWinnerPure - oldWinnerPure
	loserDelta := newLoserPure - oldLoserPure
	newWinnerTotal := existing.WinnerPoints + winnerDelta
	if newWinnerTotal < ladder.MinWinnerPoints {
		newWinnerTotal = ladder.MinWinnerPoints
		winnerDelta = newWinnerTotal - existing.WinnerPoints
	}
	updated.WinnerPoints = newWinnerTotal
	updated.LoserPoints = existing.LoserPoints + loserDelta
	if winnerDelta != 0 {
		if err := s.store.AddEarnedPoints(updated.LadderID, updated.WinnerID, winnerDelta); err != nil {
			return nil, fmt.Errorf("failed to adjust winner points: %w", err)
		}
	}
	if loserDelta != 0 {
		if err := s.store.AddEarnedPoints(updated.LadderID, updated.LoserID, loserDelta); err != nil {
			return nil, fmt.Errorf("failed to adjust loser points: %w", err)
		}
	}

	if err := s.store.UpdateMatch(&updated); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	s.metrics.IncMatchesCorrected()
	s.counters.Increment("matches_corrected")
	log.Info("Match scores corrected", "matchID", matchID,
		"winnerDelta", winnerDelta, "loserDelta", loserDelta)
	return &updated, nil
}

// DeleteMatch removes a match and takes back the points it awarded.
// Deleting a match that no longer exists is a no-op.
func (s *Manager) DeleteMatch(caller *identity.Principal, matchID int64) error {
	u, err := s.requireUser(caller)
	if err != nil {
		return err
	}

	existing, err := s.store.GetMatch(matchID)
	if err != nil {
		return fmt.Errorf("failed to load match: %w", err)
	}
	if existing == nil {
		return nil
	}

	ok, err := s.canManageLadder(u, existing.LadderID)
	if err != nil {
		return err
	}
	if !ok {
		return ladder.Errorf(ladder.KindForbidden, "Only a ladder admin can delete matches")
	}

	if existing.WinnerPoints != 0 {
		if err := s.store.AddEarnedPoints(existing.LadderID, existing.WinnerID, -existing.WinnerPoints); err != nil {
			return fmt.Errorf("failed to reverse winner points: %w", err)
		}
	}
	if existing.LoserPoints != 0 {
		if err := s.store.AddEarnedPoints(existing.LadderID, existing.LoserID, -existing.LoserPoints); err != nil {
			return fmt.Errorf("failed to reverse loser points: %w", err)
		}
	}
	if err := s.store.DeleteMatch(matchID); err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	s.metrics.IncMatchesDeleted()
	s.counters.Increment("matches_deleted")
	log.Info("Match deleted", "matchID", matchID, "ladderID", existing.LadderID)
	return nil
}

// DecayBorrowedPoints walks every open ladder and scales borrowed points
// down to the weeks remaining. Running it twice in the same week changes
// nothing.
func (s *Manager) DecayBorrowedPoints() error {
	now := s.Now()
	ladders, err := s.store.GetLadders()
	if err != nil {
		return fmt.Errorf("failed to load ladders: %w", err)
	}

	for _, l := range ladders {
		if l.WeeksForBorrowedPoints <= 0 || !l.IsOpen(now) {
			continue
		}
		weeksLeft := l.WeeksForBorrowedPoints - l.WeeksSinceStart(now)
		if weeksLeft < 0 {
			weeksLeft = 0
		}
		if weeksLeft == l.WeeksForBorrowedPointsLeft {
			continue
		}

		if l.WeeksForBorrowedPointsLeft > 0 {
			if err := s.store.DecayBorrowedPoints(l.ID, l.WeeksForBorrowedPointsLeft, weeksLeft); err != nil {
				return fmt.Errorf("failed to decay ladder %d: %w", l.ID, err)
			}
		}
		if err := s.store.UpdateLadderWeeksLeft(l.ID, weeksLeft); err != nil {
			return fmt.Errorf("failed to update weeks left for ladder %d: %w", l.ID, err)
		}

		s.metrics.IncDecayRuns()
		s.counters.Increment("decay_runs")
		log.Info("Borrowed points decayed", "ladderID", l.ID,
			"previousWeeksLeft", l.WeeksForBorrowedPointsLeft, "weeksLeft", weeksLeft)

		if err := s.pubsub.SendMessage(pubsub.EventPointsDecayed, pubsub.PointsDecayedEvent{
			LadderID:  l.ID,
			WeeksLeft: weeksLeft,
		}); err != nil {
			log.Error("Failed to publish decay event", "error", err, "ladderID", l.ID)
		}
	}
	return nil
}

// Standings resolves a ladder by a fuzzy name query (or the most recent
// ladder when empty) and returns its table. A nil ladder means no match.
func (s *Manager) Standings(query string) (*ladder.Ladder, []ladder.Player, error) {
	ladders, err := s.store.GetLadders()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ladders: %w", err)
	}
	if len(ladders) == 0 {
		return nil, nil, nil
	}

	var match *ladder.Ladder
	if query == "" {
		match = &ladders[0]
	} else {
		needle := strings.ToLower(query)
		for i := range ladders {
			if strings.Contains(strings.ToLower(ladders[i].Name), needle) {
				match = &ladders[i]
				break
			}
		}
	}
	if match == nil {
		return nil, nil, nil
	}

	players, err := s.store.GetPlayers(match.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load players: %w", err)
	}
	return match, players, nil
}

// StandingsForLadder returns a specific ladder's table, used by event
// consumers that already know the ladder id.
func (s *Manager) StandingsForLadder(ladderID int64) (*ladder.Ladder, []ladder.Player, error) {
	l, err := s.getLadder(ladderID)
	if err != nil {
		return nil, nil, err
	}
	players, err := s.store.GetPlayers(ladderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load players: %w", err)
	}
	return l, players, nil
}

// Stats returns the durable operation counters.
func (s *Manager) Stats() (map[string]int, error) {
	return s.counters.GetAll()
}
