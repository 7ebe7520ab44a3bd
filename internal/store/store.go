package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/opencourt/ladderd/internal/ladder"
)

const dateLayout = "2006-01-02"

// New creates a new Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{db: db}
}

// --- users ---

func (s *store) GetUser(id string) (*ladder.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u ladder.User
	err := s.db.QueryRow(
		"SELECT id, name, email, phone_number, photo_url, availability_text, admin FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PhotoURL, &u.Availability, &u.Admin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *store) CreateUser(u *ladder.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO users (id, name, email, phone_number, photo_url, availability_text) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PhoneNumber, u.PhotoURL, u.Availability,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser replaces all editable profile fields. The admin flag is
// deliberately not settable through this path.
func (s *store) UpdateUser(u *ladder.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE users SET name = ?, email = ?, phone_number = ?, photo_url = ?, availability_text = ? WHERE id = ?",
		u.Name, u.Email, u.PhoneNumber, u.PhotoURL, u.Availability, u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *store) UsersShareLadder(id1, id2 string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM players p1
		JOIN players p2 ON p1.ladder_id = p2.ladder_id
		WHERE p1.user_id = ? AND p2.user_id = ?`, id1, id2,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check shared ladders: %w", err)
	}
	return count > 0, nil
}

// --- ladders ---

func (s *store) GetLadders() ([]ladder.Ladder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, start_date, end_date, distance_penalty_on, weeks_for_borrowed_points, weeks_for_borrowed_points_left
		FROM ladders ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ladders: %w", err)
	}
	defer rows.Close()

	var ladders []ladder.Ladder
	for rows.Next() {
		l, err := scanLadder(rows)
		if err != nil {
			log.Error("Failed to scan ladder row", "error", err)
			continue
		}
		ladders = append(ladders, *l)
	}
	return ladders, rows.Err()
}

func (s *store) GetLadder(id int64) (*ladder.Ladder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, start_date, end_date, distance_penalty_on, weeks_for_borrowed_points, weeks_for_borrowed_points_left
		FROM ladders WHERE id = ?`, id)
	l, err := scanLadder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ladder: %w", err)
	}
	return l, nil
}

func scanLadder(scanner interface{ Scan(...any) error }) (*ladder.Ladder, error) {
	var l ladder.Ladder
	var start, end string
	err := scanner.Scan(&l.ID, &l.Name, &start, &end, &l.DistancePenaltyOn, &l.WeeksForBorrowedPoints, &l.WeeksForBorrowedPointsLeft)
	if err != nil {
		return nil, err
	}
	if l.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", start, err)
	}
	if l.EndDate, err = time.Parse(dateLayout, end); err != nil {
		return nil, fmt.Errorf("bad end_date %q: %w", end, err)
	}
	return &l, nil
}

// UpdateLadderWeeksLeft persists the decay progress counter. It is the only
// mutable ladder field.
func (s *store) UpdateLadderWeeksLeft(id int64, weeksLeft int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE ladders SET weeks_for_borrowed_points_left = ? WHERE id = ?", weeksLeft, id)
	if err != nil {
		return fmt.Errorf("failed to update ladder weeks left: %w", err)
	}
	return nil
}

// LadderJoinCode returns the ladder's join code, or "" when none is
// configured.
func (s *store) LadderJoinCode(id int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var code sql.NullString
	err := s.db.QueryRow("SELECT passcode FROM ladders WHERE id = ?", id).Scan(&code)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get ladder code: %w", err)
	}
	return code.String, nil
}

func (s *store) LadderAdminIDs(id int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT user_id FROM ladder_admins WHERE ladder_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ladder admins: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		ids = append(ids, userID)
	}
	return ids, rows.Err()
}

func (s *store) LadderIDsForUser(userID string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT ladder_id FROM players WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ladders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- players ---

// playerSelect computes score, dense rank, wins and losses read-side so the
// engine never has to cache standings.
const playerSelect = `
	SELECT u.id, u.name, u.email, u.phone_number, u.photo_url, u.availability_text, u.admin,
	       p.ladder_id, p.earned_points, p.borrowed_points,
	       p.earned_points + p.borrowed_points AS score,
	       (SELECT COUNT(DISTINCT p2.earned_points + p2.borrowed_points) + 1
	          FROM players p2
	         WHERE p2.ladder_id = p.ladder_id
	           AND p2.earned_points + p2.borrowed_points > p.earned_points + p.borrowed_points) AS ranking,
	       (SELECT COUNT(*) FROM matches m WHERE m.ladder_id = p.ladder_id AND m.winner_id = p.user_id) AS wins,
	       (SELECT COUNT(*) FROM matches m WHERE m.ladder_id = p.ladder_id AND m.loser_id = p.user_id) AS losses
	  FROM players p
	  JOIN users u ON p.user_id = u.id
	 WHERE p.ladder_id = ?`

func (s *store) GetPlayers(ladderID int64) ([]ladder.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(playerSelect+" ORDER BY score DESC, p.order_hint DESC", ladderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []ladder.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (s *store) GetPlayer(ladderID int64, userID string) (*ladder.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(playerSelect+" AND p.user_id = ?", ladderID, userID)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*ladder.Player, error) {
	var p ladder.Player
	err := scanner.Scan(
		&p.User.ID, &p.User.Name, &p.User.Email, &p.User.PhoneNumber, &p.User.PhotoURL, &p.User.Availability, &p.User.Admin,
		&p.LadderID, &p.EarnedPoints, &p.BorrowedPoints, &p.Score, &p.Ranking, &p.Wins, &p.Losses,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *store) CreatePlayer(ladderID int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT INTO players (ladder_id, user_id) VALUES (?, ?)", ladderID, userID)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (s *store) SetPlayerOrder(ladderID int64, order []ladder.PlayerOrder) error {
	if len(order) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, entry := range order {
		if _, err := tx.Exec(
			"UPDATE players SET order_hint = ? WHERE ladder_id = ? AND user_id = ?",
			entry.Rank, ladderID, entry.UserID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to set player order: %w", err)
		}
	}
	return tx.Commit()
}

func (s *store) SetAllBorrowedPoints(ladderID int64, points []ladder.PlayerPoints) error {
	if len(points) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, entry := range points {
		if _, err := tx.Exec(
			"UPDATE players SET borrowed_points = ? WHERE ladder_id = ? AND user_id = ?",
			entry.Points, ladderID, entry.UserID,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to set borrowed points: %w", err)
		}
	}
	return tx.Commit()
}

func (s *store) SetBorrowedPoints(ladderID int64, userID string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE players SET borrowed_points = ? WHERE ladder_id = ? AND user_id = ?",
		points, ladderID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set borrowed points: %w", err)
	}
	return nil
}

// AddEarnedPoints applies a relative delta. The engine never writes absolute
// totals, so concurrent reports for the same player compose in the database.
func (s *store) AddEarnedPoints(ladderID int64, userID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE players SET earned_points = earned_points + ? WHERE ladder_id = ? AND user_id = ?",
		delta, ladderID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add earned points: %w", err)
	}
	return nil
}

// DecayBorrowedPoints scales every player's borrowed points by
// weeksLeft/previousWeeksLeft using integer arithmetic. The ratio form is
// load-bearing: it accumulates correctly across skipped weeks.
func (s *store) DecayBorrowedPoints(ladderID int64, previousWeeksLeft, weeksLeft int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE players SET borrowed_points = borrowed_points * ? / ? WHERE ladder_id = ?",
		weeksLeft, previousWeeksLeft, ladderID,
	)
	if err != nil {
		return fmt.Errorf("failed to decay borrowed points: %w", err)
	}
	return nil
}

// --- matches ---

const matchSelect = `
	SELECT id, ladder_id, match_date, winner_id, loser_id,
	       winner_set1_score, loser_set1_score, winner_set2_score, loser_set2_score,
	       winner_set3_score, loser_set3_score, winner_points, loser_points
	  FROM matches`

func (s *store) GetMatches(ladderID int64, userID string) ([]ladder.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := matchSelect + " WHERE ladder_id = ?"
	args := []any{ladderID}
	if userID != "" {
		query += " AND (winner_id = ? OR loser_id = ?)"
		args = append(args, userID, userID)
	}
	query += " ORDER BY match_date DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []ladder.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (s *store) GetMatch(id int64) (*ladder.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := scanMatch(s.db.QueryRow(matchSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func scanMatch(scanner interface{ Scan(...any) error }) (*ladder.Match, error) {
	var m ladder.Match
	var date string
	var w3, l3 sql.NullInt64
	err := scanner.Scan(
		&m.ID, &m.LadderID, &date, &m.WinnerID, &m.LoserID,
		&m.WinnerSet1, &m.LoserSet1, &m.WinnerSet2, &m.LoserSet2,
		&w3, &l3, &m.WinnerPoints, &m.LoserPoints,
	)
	if err != nil {
		return nil, err
	}
	if m.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return nil, fmt.Errorf("bad match_date %q: %w", date, err)
	}
	if w3.Valid {
		v := int(w3.Int64)
		m.WinnerSet3 = &v
	}
	if l3.Valid {
		v := int(l3.Int64)
		m.LoserSet3 = &v
	}
	return &m, nil
}

// CreateMatch persists a match and returns it with the assigned id.
func (s *store) CreateMatch(m *ladder.Match) (*ladder.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO matches (ladder_id, match_date, winner_id, loser_id,
			winner_set1_score, loser_set1_score, winner_set2_score, loser_set2_score,
			winner_set3_score, loser_set3_score, winner_points, loser_points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.LadderID, m.Date.Format(time.RFC3339), m.WinnerID, m.LoserID,
		m.WinnerSet1, m.LoserSet1, m.WinnerSet2, m.LoserSet2,
		nullableInt(m.WinnerSet3), nullableInt(m.LoserSet3), m.WinnerPoints, m.LoserPoints,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read match id: %w", err)
	}

	created := *m
	created.ID = id
	return &created, nil
}

func (s *store) UpdateMatch(m *ladder.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE matches SET ladder_id = ?, match_date = ?, winner_id = ?, loser_id = ?,
			winner_set1_score = ?, loser_set1_score = ?, winner_set2_score = ?, loser_set2_score = ?,
			winner_set3_score = ?, loser_set3_score = ?, winner_points = ?, loser_points = ?
		WHERE id = ?`,
		m.LadderID, m.Date.Format(time.RFC3339), m.WinnerID, m.LoserID,
		m.WinnerSet1, m.LoserSet1, m.WinnerSet2, m.LoserSet2,
		nullableInt(m.WinnerSet3), nullableInt(m.LoserSet3), m.WinnerPoints, m.LoserPoints,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return nil
}

func (s *store) DeleteMatch(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM matches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
