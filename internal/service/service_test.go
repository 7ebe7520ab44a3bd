package service_test

import (
	"testing"
	"time"

	"github.com/opencourt/ladderd/internal/identity"
	"github.com/opencourt/ladderd/internal/ladder"
	"github.com/opencourt/ladderd/internal/metrics"
	"github.com/opencourt/ladderd/internal/notifier"
	"github.com/opencourt/ladderd/internal/pubsub"
	"github.com/opencourt/ladderd/internal/service"
	"github.com/opencourt/ladderd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *service.Manager
	store    *store.MockStore
	identity *identity.MockProvider
	notifier *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    store.NewMock(),
		identity: identity.NewMock(),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock(""),
	}
	f.svc = service.New(f.store, f.identity, f.notifier, f.metrics, metrics.NewMockCounterStore(), f.pubsub)
	// A date inside the test ladder's window.
	f.svc.Now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }
	return f
}

func openLadder(penalty bool) *ladder.Ladder {
	return &ladder.Ladder{
		ID:                         1,
		Name:                       "Spring Ladder",
		StartDate:                  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:                    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		DistancePenaltyOn:          penalty,
		WeeksForBorrowedPoints:     8,
		WeeksForBorrowedPointsLeft: 8,
	}
}

func principal(id string) *identity.Principal {
	return &identity.Principal{UserID: id}
}

// stubUser makes the store resolve any user ID to a plain user.
func (f *fixture) stubUser(admin bool) {
	f.store.GetUserFunc = func(id string) (*ladder.User, error) {
		return &ladder.User{ID: id, Name: "User " + id, Admin: admin}, nil
	}
}

func reportedMatch() ladder.Match {
	return ladder.Match{
		LadderID:   1,
		Date:       time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		WinnerID:   "winner",
		LoserID:    "loser",
		WinnerSet1: 6, LoserSet1: 0,
		WinnerSet2: 6, LoserSet2: 0,
	}
}

func TestLogin(t *testing.T) {
	t.Run("first login creates the user with defaults", func(t *testing.T) {
		f := newFixture(t)
		f.identity.VerifyFunc = func(token string) (*identity.Principal, error) {
			return &identity.Principal{UserID: "u1"}, nil
		}

		u, err := f.svc.Login("token")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "Unknown", u.Name)
		assert.Equal(t, "unset", u.PhotoURL)
		require.Len(t, f.store.CreateUserCalls, 1)
	})

	t.Run("existing user is returned as is", func(t *testing.T) {
		f := newFixture(t)
		f.identity.VerifyFunc = func(token string) (*identity.Principal, error) {
			return &identity.Principal{UserID: "u1"}, nil
		}
		f.store.GetUserFunc = func(id string) (*ladder.User, error) {
			return &ladder.User{ID: id, Name: "Alice"}, nil
		}

		u, err := f.svc.Login("token")
		require.NoError(t, err)
		assert.Equal(t, "Alice", u.Name)
		assert.Empty(t, f.store.CreateUserCalls)
	})

	t.Run("bad token is unauthorized", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login("garbage")
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindUnauthorized, domainErr.Kind)
	})
}

func TestIdentify(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.svc.Identify(""))
	// Verification failure degrades to anonymous instead of erroring.
	assert.Nil(t, f.svc.Identify("bad-token"))

	f.identity.VerifyFunc = func(token string) (*identity.Principal, error) {
		return &identity.Principal{UserID: "u1"}, nil
	}
	p := f.svc.Identify("good-token")
	require.NotNil(t, p)
	assert.Equal(t, "u1", p.UserID)
}

func TestReportMatch(t *testing.T) {
	setup := func(t *testing.T, penalty bool) *fixture {
		f := newFixture(t)
		f.stubUser(false)
		f.store.GetLadderFunc = func(id int64) (*ladder.Ladder, error) { return openLadder(penalty), nil }
		f.store.GetPlayerFunc = func(ladderID int64, userID string) (*ladder.Player, error) {
			rank := 1
			if userID == "loser" {
				rank = 3
			}
			return &ladder.Player{User: ladder.User{ID: userID}, LadderID: ladderID, Ranking: rank}, nil
		}
		return f
	}

	t.Run("awards points and publishes", func(t *testing.T) {
		f := setup(t, true)

		created, err := f.svc.ReportMatch(principal("winner"), reportedMatch())
		require.NoError(t, err)

		// 6-0 6-0 with a rank gap of 2 and the penalty on: 39 - 0 - 4.
		assert.Equal(t, 35, created.WinnerPoints)
		assert.Equal(t, 0, created.LoserPoints)
		require.NotNil(t, created.Winner)
		assert.Equal(t, "winner", created.Winner.User.ID)

		require.Len(t, f.store.AddEarnedPointsCalls, 2)
		assert.Equal(t, "winner", f.store.AddEarnedPointsCalls[0].UserID)
		assert.Equal(t, 35, f.store.AddEarnedPointsCalls[0].Delta)
		assert.Equal(t, "loser", f.store.AddEarnedPointsCalls[1].UserID)
		assert.Equal(t, 0, f.store.AddEarnedPointsCalls[1].Delta)
		require.Len(t, f.store.CreateMatchCalls, 1)

		require.Len(t, f.pubsub.SendMessageCalls, 1)
		assert.Equal(t, "match-reported", f.pubsub.SendMessageCalls[0].Topic)
		assert.Equal(t, 1, f.metrics.MatchesReported())
	})

	t.Run("rejects invalid scores before touching the store", func(t *testing.T) {
		f := setup(t, false)

		m := reportedMatch()
		m.WinnerSet1 = 6
		m.LoserSet1 = 5

		_, err := f.svc.ReportMatch(principal("winner"), m)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindInvalidInput, domainErr.Kind)
		assert.Empty(t, f.store.AddEarnedPointsCalls)
		assert.Empty(t, f.store.CreateMatchCalls)
	})

	t.Run("only the winner can report", func(t *testing.T) {
		f := setup(t, false)

		_, err := f.svc.ReportMatch(principal("loser"), reportedMatch())
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindForbidden, domainErr.Kind)
	})

	t.Run("an admin can report on the winner's behalf", func(t *testing.T) {
		f := setup(t, false)
		f.stubUser(true)

		_, err := f.svc.ReportMatch(principal("someone-else"), reportedMatch())
		require.NoError(t, err)
	})

	t.Run("stamps the match date from the server clock", func(t *testing.T) {
		f := setup(t, false)

		m := reportedMatch()
		m.Date = time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

		created, err := f.svc.ReportMatch(principal("winner"), m)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC), created.Date)
	})

	t.Run("rejects a report once the ladder has closed", func(t *testing.T) {
		f := setup(t, false)
		f.svc.Now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) }

		// Back-dating the request into the window does not help.
		m := reportedMatch()
		m.Date = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

		_, err := f.svc.ReportMatch(principal("winner"), m)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "The ladder is not currently open", domainErr.Message)
		assert.Empty(t, f.store.AddEarnedPointsCalls)
	})

	t.Run("the daily limit runs against the server date", func(t *testing.T) {
		f := setup(t, false)
		f.store.GetMatchesFunc = func(ladderID int64, userID string) ([]ladder.Match, error) {
			earlier := reportedMatch()
			earlier.Date = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
			return []ladder.Match{earlier}, nil
		}

		// Claiming the match was played yesterday does not dodge the limit.
		m := reportedMatch()
		m.Date = time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)

		_, err := f.svc.ReportMatch(principal("winner"), m)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "The winner has already played a match today", domainErr.Message)
	})

	t.Run("a failed insert takes the awards back", func(t *testing.T) {
		f := setup(t, false)
		f.store.CreateMatchFunc = func(m *ladder.Match) (*ladder.Match, error) {
			return nil, assert.AnError
		}

		_, err := f.svc.ReportMatch(principal("winner"), reportedMatch())
		require.Error(t, err)

		require.Len(t, f.store.AddEarnedPointsCalls, 4)
		assert.Equal(t, 39, f.store.AddEarnedPointsCalls[0].Delta)
		assert.Equal(t, -39, f.store.AddEarnedPointsCalls[2].Delta)
		assert.Equal(t, 0, f.store.AddEarnedPointsCalls[3].Delta)
		assert.Equal(t, 0, f.metrics.MatchesReported())
	})

	t.Run("rejects non-players", func(t *testing.T) {
		f := setup(t, false)
		f.store.GetPlayerFunc = func(ladderID int64, userID string) (*ladder.Player, error) {
			return nil, nil
		}

		_, err := f.svc.ReportMatch(principal("winner"), reportedMatch())
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "The winner is not a player in this ladder", domainErr.Message)
	})
}

func TestUpdateMatchScores(t *testing.T) {
	existing := func() *ladder.Match {
		return &ladder.Match{
			ID:       7,
			LadderID: 1,
			Date:     time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
			WinnerID: "winner", LoserID: "loser",
			WinnerSet1: 6, LoserSet1: 0,
			WinnerSet2: 6, LoserSet2: 0,
			// Original award included a distance premium.
			WinnerPoints: 54, LoserPoints: 0,
		}
	}

	setup := func(t *testing.T, admin bool) *fixture {
		f := newFixture(t)
		f.stubUser(admin)
		f.store.GetMatchFunc = func(id int64) (*ladder.Match, error) { return existing(), nil }
		return f
	}

	t.Run("applies the pure delta on top of the original award", func(t *testing.T) {
		f := setup(t, true)

		scores := ladder.Match{
			WinnerSet1: 6, LoserSet1: 4,
			WinnerSet2: 6, LoserSet2: 4,
		}
		updated, err := f.svc.UpdateMatchScores(principal("admin"), 7, scores)
		require.NoError(t, err)

		// Rank-neutral recompute: 6-0 6-0 was worth 39, 6-4 6-4 is worth 31,
		// so the winner loses 8 while keeping the original premium.
		assert.Equal(t, 46, updated.WinnerPoints)
		assert.Equal(t, 8, updated.LoserPoints)

		require.Len(t, f.store.AddEarnedPointsCalls, 2)
		assert.Equal(t, -8, f.store.AddEarnedPointsCalls[0].Delta)
		assert.Equal(t, 8, f.store.AddEarnedPointsCalls[1].Delta)
		require.Len(t, f.store.UpdateMatchCalls, 1)
		assert.Equal(t, 1, f.metrics.MatchesCorrected())
	})

	t.Run("clamps the winner total at the floor", func(t *testing.T) {
		f := setup(t, true)
		// The original award was already driven down to 14 by a penalty.
		f.store.GetMatchFunc = func(id int64) (*ladder.Match, error) {
			m := existing()
			m.WinnerPoints = 14
			return m, nil
		}

		scores := ladder.Match{
			WinnerSet1: 6, LoserSet1: 4,
			WinnerSet2: 6, LoserSet2: 4,
		}
		updated, err := f.svc.UpdateMatchScores(principal("admin"), 7, scores)
		require.NoError(t, err)

		// The raw delta of -8 would land at 6; the total clamps to 12 and the
		// applied delta shrinks to match.
		assert.Equal(t, 12, updated.WinnerPoints)
		assert.Equal(t, -2, f.store.AddEarnedPointsCalls[0].Delta)
	})

	t.Run("rejects invalid corrected scores", func(t *testing.T) {
		f := setup(t, true)

		scores := ladder.Match{
			WinnerSet1: 6, LoserSet1: 5,
			WinnerSet2: 6, LoserSet2: 0,
		}
		_, err := f.svc.UpdateMatchScores(principal("admin"), 7, scores)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindInvalidInput, domainErr.Kind)
		assert.Empty(t, f.store.UpdateMatchCalls)
	})

	t.Run("missing match is not found", func(t *testing.T) {
		f := setup(t, true)
		f.store.GetMatchFunc = func(id int64) (*ladder.Match, error) { return nil, nil }

		_, err := f.svc.UpdateMatchScores(principal("admin"), 99, ladder.Match{})
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindNotFound, domainErr.Kind)
	})

	t.Run("non-admins are forbidden", func(t *testing.T) {
		f := setup(t, false)

		_, err := f.svc.UpdateMatchScores(principal("winner"), 7, ladder.Match{
			WinnerSet1: 6, LoserSet1: 4,
			WinnerSet2: 6, LoserSet2: 4,
		})
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindForbidden, domainErr.Kind)
	})
}

func TestDeleteMatch(t *testing.T) {
	t.Run("reverses awards and deletes", func(t *testing.T) {
		f := newFixture(t)
		f.stubUser(true)
		f.store.GetMatchFunc = func(id int64) (*ladder.Match, error) {
			return &ladder.Match{
				ID: 7, LadderID: 1,
				WinnerID: "winner", LoserID: "loser",
				WinnerPoints: 33, LoserPoints: 6,
			}, nil
		}

		require.NoError(t, f.svc.DeleteMatch(principal("admin"), 7))

		require.Len(t, f.store.AddEarnedPointsCalls, 2)
		assert.Equal(t, -33, f.store.AddEarnedPointsCalls[0].Delta)
		assert.Equal(t, -6, f.store.AddEarnedPointsCalls[1].Delta)
		assert.Equal(t, []int64{7}, f.store.DeleteMatchCalls)
		assert.Equal(t, 1, f.metrics.MatchesDeleted())
	})

	t.Run("deleting an absent match is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.stubUser(true)

		require.NoError(t, f.svc.DeleteMatch(principal("admin"), 99))
		assert.Empty(t, f.store.AddEarnedPointsCalls)
		assert.Empty(t, f.store.DeleteMatchCalls)
		assert.Equal(t, 0, f.metrics.MatchesDeleted())
	})
}

func TestDecayBorrowedPoints(t *testing.T) {
	t.Run("scales borrowed points once per week", func(t *testing.T) {
		f := newFixture(t)
		f.store.GetLaddersFunc = func() ([]ladder.Ladder, error) {
			return []ladder.Ladder{*openLadder(false)}, nil
		}
		// One full week into the season.
		f.svc.Now = func() time.Time { return time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC) }

		require.NoError(t, f.svc.DecayBorrowedPoints())

		require.Len(t, f.store.DecayBorrowedPointsCalls, 1)
		assert.Equal(t, 8, f.store.DecayBorrowedPointsCalls[0].PreviousWeeksLeft)
		assert.Equal(t, 7, f.store.DecayBorrowedPointsCalls[0].WeeksLeft)
		assert.Equal(t, []int{7}, f.store.UpdateLadderWeeksLeftCalls)
		assert.Equal(t, 1, f.metrics.DecayRuns())
		require.Len(t, f.pubsub.SendMessageCalls, 1)
		assert.Equal(t, "points-decayed", f.pubsub.SendMessageCalls[0].Topic)
	})

	t.Run("a second run in the same week changes nothing", func(t *testing.T) {
		f := newFixture(t)
		l := openLadder(false)
		l.WeeksForBorrowedPointsLeft = 7
		f.store.GetLaddersFunc = func() ([]ladder.Ladder, error) { return []ladder.Ladder{*l}, nil }
		f.svc.Now = func() time.Time { return time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC) }

		require.NoError(t, f.svc.DecayBorrowedPoints())
		assert.Empty(t, f.store.DecayBorrowedPointsCalls)
		assert.Empty(t, f.store.UpdateLadderWeeksLeftCalls)
		assert.Equal(t, 0, f.metrics.DecayRuns())
	})

	t.Run("closed ladders and ladders without an allowance are skipped", func(t *testing.T) {
		f := newFixture(t)
		closed := *openLadder(false)
		noAllowance := *openLadder(false)
		noAllowance.WeeksForBorrowedPoints = 0
		f.store.GetLaddersFunc = func() ([]ladder.Ladder, error) {
			return []ladder.Ladder{closed, noAllowance}, nil
		}
		// Before the season starts.
		f.svc.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

		require.NoError(t, f.svc.DecayBorrowedPoints())
		assert.Empty(t, f.store.DecayBorrowedPointsCalls)
	})
}

func TestJoinLadder(t *testing.T) {
	setup := func(t *testing.T, code string) *fixture {
		f := newFixture(t)
		f.stubUser(false)
		f.store.GetLadderFunc = func(id int64) (*ladder.Ladder, error) { return openLadder(false), nil }
		f.store.LadderJoinCodeFunc = func(id int64) (string, error) { return code, nil }
		return f
	}

	t.Run("joins with the right code", func(t *testing.T) {
		f := setup(t, "secret")
		require.NoError(t, f.svc.JoinLadder(principal("u1"), 1, "secret"))
		assert.Equal(t, []string{"u1"}, f.store.CreatePlayerCalls)
	})

	t.Run("wrong code is forbidden", func(t *testing.T) {
		f := setup(t, "secret")
		err := f.svc.JoinLadder(principal("u1"), 1, "wrong")
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindForbidden, domainErr.Kind)
		assert.Empty(t, f.store.CreatePlayerCalls)
	})

	t.Run("no code configured means open entry", func(t *testing.T) {
		f := setup(t, "")
		require.NoError(t, f.svc.JoinLadder(principal("u1"), 1, ""))
	})

	t.Run("joining twice is rejected", func(t *testing.T) {
		f := setup(t, "")
		f.store.GetPlayerFunc = func(ladderID int64, userID string) (*ladder.Player, error) {
			return &ladder.Player{User: ladder.User{ID: userID}}, nil
		}
		err := f.svc.JoinLadder(principal("u1"), 1, "")
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "You have already joined this ladder", domainErr.Message)
	})
}

func TestUpdatePlayerOrder(t *testing.T) {
	setup := func(t *testing.T, admin bool) *fixture {
		f := newFixture(t)
		f.stubUser(admin)
		f.store.GetLadderFunc = func(id int64) (*ladder.Ladder, error) { return openLadder(false), nil }
		// Before the ladder opens.
		f.svc.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
		return f
	}

	t.Run("sets order hints and seeds borrowed points", func(t *testing.T) {
		f := setup(t, true)

		err := f.svc.UpdatePlayerOrder(principal("admin"), 1, []string{"a", "b", "c"}, true)
		require.NoError(t, err)

		require.Len(t, f.store.SetPlayerOrderCalls, 1)
		assert.Equal(t, []ladder.PlayerOrder{
			{UserID: "a", Rank: 3},
			{UserID: "b", Rank: 2},
			{UserID: "c", Rank: 1},
		}, f.store.SetPlayerOrderCalls[0])

		require.Len(t, f.store.SetAllBorrowedPointsCalls, 1)
		assert.Equal(t, []ladder.PlayerPoints{
			{UserID: "a", Points: 24},
			{UserID: "b", Points: 16},
			{UserID: "c", Points: 8},
		}, f.store.SetAllBorrowedPointsCalls[0])
	})

	t.Run("without seeding only the order changes", func(t *testing.T) {
		f := setup(t, true)

		require.NoError(t, f.svc.UpdatePlayerOrder(principal("admin"), 1, []string{"a", "b"}, false))
		assert.Len(t, f.store.SetPlayerOrderCalls, 1)
		assert.Empty(t, f.store.SetAllBorrowedPointsCalls)
	})

	t.Run("rejected once the ladder has started", func(t *testing.T) {
		f := setup(t, true)
		f.svc.Now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

		err := f.svc.UpdatePlayerOrder(principal("admin"), 1, []string{"a"}, false)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "The player order can only be changed before the ladder starts", domainErr.Message)
	})

	t.Run("non-admins are forbidden", func(t *testing.T) {
		f := setup(t, false)

		err := f.svc.UpdatePlayerOrder(principal("u1"), 1, []string{"a"}, false)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindForbidden, domainErr.Kind)
	})
}

func TestUpdatePlayer(t *testing.T) {
	setup := func(t *testing.T) *fixture {
		f := newFixture(t)
		f.stubUser(true)
		f.store.GetPlayersFunc = func(ladderID int64) ([]ladder.Player, error) {
			return []ladder.Player{
				{User: ladder.User{ID: "a"}, BorrowedPoints: 24},
				{User: ladder.User{ID: "b"}, BorrowedPoints: 16},
			}, nil
		}
		return f
	}

	t.Run("accepts a value another player carries", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.svc.UpdatePlayer(principal("admin"), 1, "b", 24))
		require.Len(t, f.store.SetBorrowedPointsCalls, 1)
		assert.Equal(t, 24, f.store.SetBorrowedPointsCalls[0].Points)
	})

	t.Run("zero is always allowed", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.svc.UpdatePlayer(principal("admin"), 1, "b", 0))
	})

	t.Run("rejects a value no one carries", func(t *testing.T) {
		f := setup(t)
		err := f.svc.UpdatePlayer(principal("admin"), 1, "b", 99)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "Borrowed points must match the current value of another player", domainErr.Message)
	})

	t.Run("unknown player is not found", func(t *testing.T) {
		f := setup(t)
		err := f.svc.UpdatePlayer(principal("admin"), 1, "nobody", 24)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindNotFound, domainErr.Kind)
	})
}

func TestGetUserAuthorization(t *testing.T) {
	setup := func(t *testing.T, shared bool) *fixture {
		f := newFixture(t)
		f.stubUser(false)
		f.store.UsersShareLadderFunc = func(id1, id2 string) (bool, error) { return shared, nil }
		return f
	}

	t.Run("self is always visible", func(t *testing.T) {
		f := setup(t, false)
		u, err := f.svc.GetUser(principal("u1"), "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("ladder mates are visible", func(t *testing.T) {
		f := setup(t, true)
		_, err := f.svc.GetUser(principal("u1"), "u2")
		require.NoError(t, err)
	})

	t.Run("strangers are forbidden", func(t *testing.T) {
		f := setup(t, false)
		_, err := f.svc.GetUser(principal("u1"), "u2")
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindForbidden, domainErr.Kind)
	})

	t.Run("anonymous callers are unauthorized", func(t *testing.T) {
		f := setup(t, true)
		_, err := f.svc.GetUser(nil, "u2")
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindUnauthorized, domainErr.Kind)
	})
}

func TestUpdateUserPreservesAdminFlag(t *testing.T) {
	f := newFixture(t)
	f.store.GetUserFunc = func(id string) (*ladder.User, error) {
		return &ladder.User{ID: id, Name: "Old Name", Admin: true}, nil
	}

	updated, err := f.svc.UpdateUser(principal("u1"), ladder.User{
		ID:    "u1",
		Name:  "New Name",
		Admin: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.True(t, updated.Admin, "the admin flag must not be settable through a profile update")
	require.Len(t, f.store.UpdateUserCalls, 1)
}

func TestUpdateUserIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.stubUser(true)

	_, err := f.svc.UpdateUser(principal("admin"), ladder.User{ID: "someone-else"})
	var domainErr *ladder.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, ladder.KindForbidden, domainErr.Kind)
	assert.Empty(t, f.store.UpdateUserCalls)
}

func TestStandings(t *testing.T) {
	f := newFixture(t)
	f.store.GetLaddersFunc = func() ([]ladder.Ladder, error) {
		return []ladder.Ladder{
			{ID: 2, Name: "Autumn Ladder"},
			{ID: 1, Name: "Spring Ladder"},
		}, nil
	}
	f.store.GetPlayersFunc = func(ladderID int64) ([]ladder.Player, error) {
		return []ladder.Player{{User: ladder.User{ID: "a"}, LadderID: ladderID}}, nil
	}

	t.Run("empty query picks the most recent ladder", func(t *testing.T) {
		l, players, err := f.svc.Standings("")
		require.NoError(t, err)
		require.NotNil(t, l)
		assert.Equal(t, int64(2), l.ID)
		assert.Len(t, players, 1)
	})

	t.Run("query matches case-insensitively", func(t *testing.T) {
		l, _, err := f.svc.Standings("spring")
		require.NoError(t, err)
		require.NotNil(t, l)
		assert.Equal(t, int64(1), l.ID)
	})

	t.Run("no match returns nil", func(t *testing.T) {
		l, players, err := f.svc.Standings("winter")
		require.NoError(t, err)
		assert.Nil(t, l)
		assert.Nil(t, players)
	})
}

func TestStandingsForLadder(t *testing.T) {
	f := newFixture(t)
	f.store.GetLadderFunc = func(id int64) (*ladder.Ladder, error) {
		if id != 1 {
			return nil, nil
		}
		return openLadder(false), nil
	}
	f.store.GetPlayersFunc = func(ladderID int64) ([]ladder.Player, error) {
		return []ladder.Player{{User: ladder.User{ID: "a"}, LadderID: ladderID}}, nil
	}

	t.Run("returns the ladder and its players", func(t *testing.T) {
		l, players, err := f.svc.StandingsForLadder(1)
		require.NoError(t, err)
		assert.Equal(t, "Spring Ladder", l.Name)
		assert.Len(t, players, 1)
	})

	t.Run("unknown ladder is not found", func(t *testing.T) {
		_, _, err := f.svc.StandingsForLadder(9)
		var domainErr *ladder.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ladder.KindNotFound, domainErr.Kind)
	})
}
