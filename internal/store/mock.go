package store

import (
	"sync"

	"github.com/opencourt/ladderd/internal/ladder"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetUserFunc              func(id string) (*ladder.User, error)
	CreateUserFunc           func(u *ladder.User) error
	UpdateUserFunc           func(u *ladder.User) error
	UsersShareLadderFunc     func(id1, id2 string) (bool, error)
	GetLaddersFunc           func() ([]ladder.Ladder, error)
	GetLadderFunc            func(id int64) (*ladder.Ladder, error)
	UpdateLadderWeeksLeftFunc func(id int64, weeksLeft int) error
	LadderJoinCodeFunc       func(id int64) (string, error)
	LadderAdminIDsFunc       func(id int64) ([]string, error)
	LadderIDsForUserFunc     func(userID string) ([]int64, error)
	GetPlayersFunc           func(ladderID int64) ([]ladder.Player, error)
	GetPlayerFunc            func(ladderID int64, userID string) (*ladder.Player, error)
	CreatePlayerFunc         func(ladderID int64, userID string) error
	SetPlayerOrderFunc       func(ladderID int64, order []ladder.PlayerOrder) error
	SetAllBorrowedPointsFunc func(ladderID int64, points []ladder.PlayerPoints) error
	SetBorrowedPointsFunc    func(ladderID int64, userID string, points int) error
	AddEarnedPointsFunc      func(ladderID int64, userID string, delta int) error
	DecayBorrowedPointsFunc  func(ladderID int64, previousWeeksLeft, weeksLeft int) error
	GetMatchesFunc           func(ladderID int64, userID string) ([]ladder.Match, error)
	GetMatchFunc             func(id int64) (*ladder.Match, error)
	CreateMatchFunc          func(m *ladder.Match) (*ladder.Match, error)
	UpdateMatchFunc          func(m *ladder.Match) error
	DeleteMatchFunc          func(id int64) error

	// Call records
	CreateUserCalls      []*ladder.User
	UpdateUserCalls      []*ladder.User
	CreatePlayerCalls    []string
	SetPlayerOrderCalls  [][]ladder.PlayerOrder
	SetAllBorrowedPointsCalls [][]ladder.PlayerPoints
	SetBorrowedPointsCalls []struct {
		UserID string
		Points int
	}
	AddEarnedPointsCalls []struct {
		UserID string
		Delta  int
	}
	DecayBorrowedPointsCalls []struct {
		PreviousWeeksLeft int
		WeeksLeft         int
	}
	UpdateLadderWeeksLeftCalls []int
	CreateMatchCalls           []*ladder.Match
	UpdateMatchCalls           []*ladder.Match
	DeleteMatchCalls           []int64
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetUser(id string) (*ladder.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetUserFunc != nil {
		return m.GetUserFunc(id)
	}
	return nil, nil
}

func (m *MockStore) CreateUser(u *ladder.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateUserCalls = append(m.CreateUserCalls, u)
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(u)
	}
	return nil
}

func (m *MockStore) UpdateUser(u *ladder.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateUserCalls = append(m.UpdateUserCalls, u)
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(u)
	}
	return nil
}

func (m *MockStore) UsersShareLadder(id1, id2 string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UsersShareLadderFunc != nil {
		return m.UsersShareLadderFunc(id1, id2)
	}
	return false, nil
}

func (m *MockStore) GetLadders() ([]ladder.Ladder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLaddersFunc != nil {
		return m.GetLaddersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetLadder(id int64) (*ladder.Ladder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLadderFunc != nil {
		return m.GetLadderFunc(id)
	}
	return nil, nil
}

func (m *MockStore) UpdateLadderWeeksLeft(id int64, weeksLeft int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateLadderWeeksLeftCalls = append(m.UpdateLadderWeeksLeftCalls, weeksLeft)
	if m.UpdateLadderWeeksLeftFunc != nil {
		return m.UpdateLadderWeeksLeftFunc(id, weeksLeft)
	}
	return nil
}

func (m *MockStore) LadderJoinCode(id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LadderJoinCodeFunc != nil {
		return m.LadderJoinCodeFunc(id)
	}
	return "", nil
}

func (m *MockStore) LadderAdminIDs(id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LadderAdminIDsFunc != nil {
		return m.LadderAdminIDsFunc(id)
	}
	return nil, nil
}

func (m *MockStore) LadderIDsForUser(userID string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LadderIDsForUserFunc != nil {
		return m.LadderIDsForUserFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(ladderID int64) ([]ladder.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(ladderID)
	}
	return nil, nil
}

func (m *MockStore) GetPlayer(ladderID int64, userID string) (*ladder.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ladderID, userID)
	}
	return nil, nil
}

func (m *MockStore) CreatePlayer(ladderID int64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatePlayerCalls = append(m.CreatePlayerCalls, userID)
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(ladderID, userID)
	}
	return nil
}

func (m *MockStore) SetPlayerOrder(ladderID int64, order []ladder.PlayerOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetPlayerOrderCalls = append(m.SetPlayerOrderCalls, order)
	if m.SetPlayerOrderFunc != nil {
		return m.SetPlayerOrderFunc(ladderID, order)
	}
	return nil
}

func (m *MockStore) SetAllBorrowedPoints(ladderID int64, points []ladder.PlayerPoints) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetAllBorrowedPointsCalls = append(m.SetAllBorrowedPointsCalls, points)
	if m.SetAllBorrowedPointsFunc != nil {
		return m.SetAllBorrowedPointsFunc(ladderID, points)
	}
	return nil
}

func (m *MockStore) SetBorrowedPoints(ladderID int64, userID string, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetBorrowedPointsCalls = append(m.SetBorrowedPointsCalls, struct {
		UserID string
		Points int
	}{userID, points})
	if m.SetBorrowedPointsFunc != nil {
		return m.SetBorrowedPointsFunc(ladderID, userID, points)
	}
	return nil
}

func (m *MockStore) AddEarnedPoints(ladderID int64, userID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddEarnedPointsCalls = append(m.AddEarnedPointsCalls, struct {
		UserID string
		Delta  int
	}{userID, delta})
	if m.AddEarnedPointsFunc != nil {
		return m.AddEarnedPointsFunc(ladderID, userID, delta)
	}
	return nil
}

func (m *MockStore) DecayBorrowedPoints(ladderID int64, previousWeeksLeft, weeksLeft int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DecayBorrowedPointsCalls = append(m.DecayBorrowedPointsCalls, struct {
		PreviousWeeksLeft int
		WeeksLeft         int
	}{previousWeeksLeft, weeksLeft})
	if m.DecayBorrowedPointsFunc != nil {
		return m.DecayBorrowedPointsFunc(ladderID, previousWeeksLeft, weeksLeft)
	}
	return nil
}

func (m *MockStore) GetMatches(ladderID int64, userID string) ([]ladder.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchesFunc != nil {
		return m.GetMatchesFunc(ladderID, userID)
	}
	return nil, nil
}

func (m *MockStore) GetMatch(id int64) (*ladder.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(id)
	}
	return nil, nil
}

func (m *MockStore) CreateMatch(match *ladder.Match) (*ladder.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, match)
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(match)
	}
	created := *match
	if created.ID == 0 {
		created.ID = int64(len(m.CreateMatchCalls))
	}
	return &created, nil
}

func (m *MockStore) UpdateMatch(match *ladder.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateMatchCalls = append(m.UpdateMatchCalls, match)
	if m.UpdateMatchFunc != nil {
		return m.UpdateMatchFunc(match)
	}
	return nil
}

func (m *MockStore) DeleteMatch(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteMatchCalls = append(m.DeleteMatchCalls, id)
	if m.DeleteMatchFunc != nil {
		return m.DeleteMatchFunc(id)
	}
	return nil
}
