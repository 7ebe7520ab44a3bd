package ladder_test

import (
	"testing"
	"time"

	"github.com/opencourt/ladderd/internal/ladder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func testMatch(w1, l1, w2, l2 int, set3 ...int) ladder.Match {
	m := ladder.Match{
		LadderID:   1,
		Date:       time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC),
		WinnerID:   "winner",
		LoserID:    "loser",
		WinnerSet1: w1,
		LoserSet1:  l1,
		WinnerSet2: w2,
		LoserSet2:  l2,
	}
	if len(set3) == 2 {
		m.WinnerSet3 = intp(set3[0])
		m.LoserSet3 = intp(set3[1])
	}
	return m
}

func TestValidate(t *testing.T) {
	assertError := func(t *testing.T, expected string, m ladder.Match) {
		t.Helper()
		err := m.Validate()
		require.Error(t, err)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindInvalidInput, domainErr.Kind)
		assert.Equal(t, expected, domainErr.Message)
	}

	t.Run("missing fields", func(t *testing.T) {
		m := testMatch(6, 0, 6, 0)
		m.LadderID = 0
		assertError(t, "Missing ladder_id", m)

		m = testMatch(6, 0, 6, 0)
		m.Date = time.Time{}
		assertError(t, "Missing match_date", m)

		m = testMatch(6, 0, 6, 0)
		m.WinnerID = ""
		assertError(t, "Missing winner_id", m)

		m = testMatch(6, 0, 6, 0)
		m.LoserID = ""
		assertError(t, "Missing loser_id", m)
	})

	t.Run("playing against oneself", func(t *testing.T) {
		m := testMatch(6, 0, 6, 0)
		m.LoserID = m.WinnerID
		assertError(t, "A match cannot be played against oneself", m)
	})

	t.Run("set scores", func(t *testing.T) {
		assertError(t, "Invalid scores for set 1", testMatch(6, 5, 6, 0))
		assertError(t, "Invalid scores for set 2", testMatch(6, 0, 8, 6))
		assertError(t, "Invalid scores for set 3", testMatch(6, 0, 0, 6, 9, 7))

		// Lone third-set score is rejected.
		m := testMatch(6, 0, 0, 6)
		m.WinnerSet3 = intp(10)
		assertError(t, "Invalid scores for set 3", m)
	})

	t.Run("reporting side", func(t *testing.T) {
		// The declared winner lost both sets: the loser is reporting.
		assertError(t, "Only winners can report match results", testMatch(0, 6, 0, 6))
		assertError(t, "Only winners can report match results", testMatch(0, 6, 6, 0, 8, 10))

		// Nobody wins all three sets of a best-of-three.
		assertError(t, "A best-of-three match cannot have the same player win all three sets", testMatch(6, 0, 6, 0, 6, 0))
	})

	t.Run("valid matches", func(t *testing.T) {
		require.NoError(t, testMatch(6, 0, 6, 0).Validate())
		require.NoError(t, testMatch(7, 5, 6, 4).Validate())
		require.NoError(t, testMatch(6, 0, 0, 6, 6, 0).Validate())
		require.NoError(t, testMatch(6, 0, 0, 6, 10, 8).Validate())
		require.NoError(t, testMatch(7, 6, 6, 7, 12, 10).Validate())
	})
}

func TestIsValidSet(t *testing.T) {
	assert.False(t, ladder.IsValidSet(0, 0))
	assert.False(t, ladder.IsValidSet(2, 1))
	assert.False(t, ladder.IsValidSet(10, 0))
	assert.False(t, ladder.IsValidSet(6, 6))
	assert.False(t, ladder.IsValidSet(6, 5))
	assert.False(t, ladder.IsValidSet(7, 4))
	assert.False(t, ladder.IsValidSet(7, 7))
	assert.False(t, ladder.IsValidSet(6, -1))

	assert.True(t, ladder.IsValidSet(6, 0))
	assert.True(t, ladder.IsValidSet(0, 6))
	assert.True(t, ladder.IsValidSet(6, 4))
	assert.True(t, ladder.IsValidSet(4, 6))
	assert.True(t, ladder.IsValidSet(7, 5))
	assert.True(t, ladder.IsValidSet(5, 7))
	assert.True(t, ladder.IsValidSet(7, 6))
	assert.True(t, ladder.IsValidSet(6, 7))
}

func TestIsValidTiebreak(t *testing.T) {
	assert.False(t, ladder.IsValidTiebreak(0, 0))
	assert.False(t, ladder.IsValidTiebreak(6, 1))
	assert.False(t, ladder.IsValidTiebreak(7, 9))
	assert.False(t, ladder.IsValidTiebreak(10, 10))
	assert.False(t, ladder.IsValidTiebreak(10, 9))
	assert.False(t, ladder.IsValidTiebreak(8, 11))
	assert.False(t, ladder.IsValidTiebreak(10, -1))
	assert.False(t, ladder.IsValidTiebreak(0, 10))
	assert.False(t, ladder.IsValidTiebreak(11, 8))

	assert.True(t, ladder.IsValidTiebreak(10, 0))
	assert.True(t, ladder.IsValidTiebreak(10, 8))
	assert.True(t, ladder.IsValidTiebreak(11, 9))
	assert.True(t, ladder.IsValidTiebreak(150, 148))
}
