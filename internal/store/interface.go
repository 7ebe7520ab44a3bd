package store

import "github.com/opencourt/ladderd/internal/ladder"

// Store is the repository the engine depends on. Point mutations are
// expressed as relative deltas so concurrent reports compose without a
// read-modify-write race at this layer; ranking is recomputed on every read.
type Store interface {
	GetUser(id string) (*ladder.User, error)
	CreateUser(u *ladder.User) error
	UpdateUser(u *ladder.User) error
	UsersShareLadder(id1, id2 string) (bool, error)

	GetLadders() ([]ladder.Ladder, error)
	GetLadder(id int64) (*ladder.Ladder, error)
	UpdateLadderWeeksLeft(id int64, weeksLeft int) error
	LadderJoinCode(id int64) (string, error)
	LadderAdminIDs(id int64) ([]string, error)
	LadderIDsForUser(userID string) ([]int64, error)

	GetPlayers(ladderID int64) ([]ladder.Player, error)
	GetPlayer(ladderID int64, userID string) (*ladder.Player, error)
	CreatePlayer(ladderID int64, userID string) error
	SetPlayerOrder(ladderID int64, order []ladder.PlayerOrder) error
	SetAllBorrowedPoints(ladderID int64, points []ladder.PlayerPoints) error
	SetBorrowedPoints(ladderID int64, userID string, points int) error
	AddEarnedPoints(ladderID int64, userID string, delta int) error
	DecayBorrowedPoints(ladderID int64, previousWeeksLeft, weeksLeft int) error

	GetMatches(ladderID int64, userID string) ([]ladder.Match, error)
	GetMatch(id int64) (*ladder.Match, error)
	CreateMatch(m *ladder.Match) (*ladder.Match, error)
	UpdateMatch(m *ladder.Match) error
	DeleteMatch(id int64) error
}
