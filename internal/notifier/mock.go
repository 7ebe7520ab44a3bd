package notifier

import (
	"sync"

	"github.com/opencourt/ladderd/internal/ladder"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendMatchReportedFunc func(match *ladder.Match, dryRun bool) error
	SendStandingsFunc     func(l ladder.Ladder, players []ladder.Player, dryRun bool) error

	// Spies for format functions
	FormatStandingsResponseFunc      func(l ladder.Ladder, players []ladder.Player) (any, error)
	FormatLadderNotFoundResponseFunc func(query string) (any, error)

	// Call records
	SendMatchReportedCalls []*ladder.Match
	SendStandingsCalls     [][]ladder.Player

	LastStandingsResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchReportedCalls = nil
	m.SendStandingsCalls = nil
	m.LastStandingsResponse = nil
}

func (m *Mock) SendMatchReported(match *ladder.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchReportedCalls = append(m.SendMatchReportedCalls, match)
	if m.SendMatchReportedFunc != nil {
		return m.SendMatchReportedFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendStandings(l ladder.Ladder, players []ladder.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, players)
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(l, players, dryRun)
	}
	return nil
}

func (m *Mock) FormatStandingsResponse(l ladder.Ladder, players []ladder.Player) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatStandingsResponseFunc != nil {
		resp, err := m.FormatStandingsResponseFunc(l, players)
		m.LastStandingsResponse = resp
		return resp, err
	}
	return "formatted_standings", nil
}

func (m *Mock) FormatLadderNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLadderNotFoundResponseFunc != nil {
		return m.FormatLadderNotFoundResponseFunc(query)
	}
	return "formatted_ladder_not_found", nil
}
