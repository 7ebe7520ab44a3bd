package service

import (
	"sync"

	"github.com/opencourt/ladderd/internal/identity"
	"github.com/opencourt/ladderd/internal/ladder"
)

// MockService is a mock implementation of the Service interface for testing.
// It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	// Spies for method calls
	IdentifyFunc            func(token string) *identity.Principal
	LoginFunc               func(token string) (*ladder.User, error)
	GetUserFunc             func(caller *identity.Principal, id string) (*ladder.User, error)
	UpdateUserFunc          func(caller *identity.Principal, u ladder.User) (*ladder.User, error)
	GetLaddersFunc          func(caller *identity.Principal) ([]ladder.Ladder, error)
	GetPlayersFunc          func(caller *identity.Principal, ladderID int64) ([]ladder.Player, error)
	JoinLadderFunc          func(caller *identity.Principal, ladderID int64, code string) error
	UpdatePlayerOrderFunc   func(caller *identity.Principal, ladderID int64, userIDs []string, seedBorrowedPoints bool) error
	UpdatePlayerFunc        func(caller *identity.Principal, ladderID int64, userID string, borrowedPoints int) error
	GetMatchesFunc          func(caller *identity.Principal, ladderID int64, userID string) ([]ladder.Match, error)
	ReportMatchFunc         func(caller *identity.Principal, m ladder.Match) (*ladder.Match, error)
	UpdateMatchScoresFunc   func(caller *identity.Principal, matchID int64, scores ladder.Match) (*ladder.Match, error)
	DeleteMatchFunc         func(caller *identity.Principal, matchID int64) error
	DecayBorrowedPointsFunc func() error
	StandingsFunc           func(query string) (*ladder.Ladder, []ladder.Player, error)
	StandingsForLadderFunc  func(ladderID int64) (*ladder.Ladder, []ladder.Player, error)
	StatsFunc               func() (map[string]int, error)

	// Call records
	ReportMatchCalls       []ladder.Match
	UpdateMatchScoresCalls []int64
	DeleteMatchCalls       []int64
	DecayCalls             int
}

// NewMockService creates a new mock instance.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Identify(token string) *identity.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IdentifyFunc != nil {
		return m.IdentifyFunc(token)
	}
	return nil
}

func (m *MockService) Login(token string) (*ladder.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(token)
	}
	return nil, ladder.Errorf(ladder.KindUnauthorized, "Invalid credentials")
}

func (m *MockService) GetUser(caller *identity.Principal, id string) (*ladder.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetUserFunc != nil {
		return m.GetUserFunc(caller, id)
	}
	return nil, ladder.Errorf(ladder.KindNotFound, "User not found")
}

func (m *MockService) UpdateUser(caller *identity.Principal, u ladder.User) (*ladder.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(caller, u)
	}
	return &u, nil
}

func (m *MockService) GetLadders(caller *identity.Principal) ([]ladder.Ladder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLaddersFunc != nil {
		return m.GetLaddersFunc(caller)
	}
	return nil, nil
}

func (m *MockService) GetPlayers(caller *identity.Principal, ladderID int64) ([]ladder.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(caller, ladderID)
	}
	return nil, nil
}

func (m *MockService) JoinLadder(caller *identity.Principal, ladderID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.JoinLadderFunc != nil {
		return m.JoinLadderFunc(caller, ladderID, code)
	}
	return nil
}

func (m *MockService) UpdatePlayerOrder(caller *identity.Principal, ladderID int64, userIDs []string, seedBorrowedPoints bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdatePlayerOrderFunc != nil {
		return m.UpdatePlayerOrderFunc(caller, ladderID, userIDs, seedBorrowedPoints)
	}
	return nil
}

func (m *MockService) UpdatePlayer(caller *identity.Principal, ladderID int64, userID string, borrowedPoints int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdatePlayerFunc != nil {
		return m.UpdatePlayerFunc(caller, ladderID, userID, borrowedPoints)
	}
	return nil
}

func (m *MockService) GetMatches(caller *identity.Principal, ladderID int64, userID string) ([]ladder.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchesFunc != nil {
		return m.GetMatchesFunc(caller, ladderID, userID)
	}
	return nil, nil
}

func (m *MockService) ReportMatch(caller *identity.Principal, match ladder.Match) (*ladder.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportMatchCalls = append(m.ReportMatchCalls, match)
	if m.ReportMatchFunc != nil {
		return m.ReportMatchFunc(caller, match)
	}
	created := match
	created.ID = int64(len(m.ReportMatchCalls))
	return &created, nil
}

func (m *MockService) UpdateMatchScores(caller *identity.Principal, matchID int64, scores ladder.Match) (*ladder.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateMatchScoresCalls = append(m.UpdateMatchScoresCalls, matchID)
	if m.UpdateMatchScoresFunc != nil {
		return m.UpdateMatchScoresFunc(caller, matchID, scores)
	}
	updated := scores
	updated.ID = matchID
	return &updated, nil
}

func (m *MockService) DeleteMatch(caller *identity.Principal, matchID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteMatchCalls = append(m.DeleteMatchCalls, matchID)
	if m.DeleteMatchFunc != nil {
		return m.DeleteMatchFunc(caller, matchID)
	}
	return nil
}

func (m *MockService) DecayBorrowedPoints() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DecayCalls++
	if m.DecayBorrowedPointsFunc != nil {
		return m.DecayBorrowedPointsFunc()
	}
	return nil
}

func (m *MockService) Standings(query string) (*ladder.Ladder, []ladder.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StandingsFunc != nil {
		return m.StandingsFunc(query)
	}
	return nil, nil, nil
}

func (m *MockService) StandingsForLadder(ladderID int64) (*ladder.Ladder, []ladder.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StandingsForLadderFunc != nil {
		return m.StandingsForLadderFunc(ladderID)
	}
	return nil, nil, ladder.Errorf(ladder.KindNotFound, "Ladder not found")
}

func (m *MockService) Stats() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatsFunc != nil {
		return m.StatsFunc()
	}
	return map[string]int{}, nil
}
