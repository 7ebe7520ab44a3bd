package service

import (
	"github.com/opencourt/ladderd/internal/identity"
	"github.com/opencourt/ladderd/internal/ladder"
)

// Service is the application-level API. Every operation takes the caller's
// principal (nil for anonymous) and enforces authorization before touching
// the store.
type Service interface {
	Identify(token string) *identity.Principal
	Login(token string) (*ladder.User, error)

	GetUser(caller *identity.Principal, id string) (*ladder.User, error)
	UpdateUser(caller *identity.Principal, u ladder.User) (*ladder.User, error)

	GetLadders(caller *identity.Principal) ([]ladder.Ladder, error)
	GetPlayers(caller *identity.Principal, ladderID int64) ([]ladder.Player, error)
	JoinLadder(caller *identity.Principal, ladderID int64, code string) error
	UpdatePlayerOrder(caller *identity.Principal, ladderID int64, userIDs []string, seedBorrowedPoints bool) error
	UpdatePlayer(caller *identity.Principal, ladderID int64, userID string, borrowedPoints int) error

	GetMatches(caller *identity.Principal, ladderID int64, userID string) ([]ladder.Match, error)
	ReportMatch(caller *identity.Principal, m ladder.Match) (*ladder.Match, error)
	UpdateMatchScores(caller *identity.Principal, matchID int64, scores ladder.Match) (*ladder.Match, error)
	DeleteMatch(caller *identity.Principal, matchID int64) error

	DecayBorrowedPoints() error
	Standings(query string) (*ladder.Ladder, []ladder.Player, error)
	StandingsForLadder(ladderID int64) (*ladder.Ladder, []ladder.Player, error)
	Stats() (map[string]int, error)
}
