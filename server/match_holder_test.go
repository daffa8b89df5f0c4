package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uno/game"
	"uno/model"
)

func newTestMatchHolder(t *testing.T, rules game.Rules) *MatchHolder {
	return NewMatchHolder(rules, nil, testStats(t), NewNopLogger())
}

func TestMatchCodesAreUnique(t *testing.T) {
	r := newTestMatchHolder(t, game.Rules{})

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		m, err := r.Create(game.PlayerInfo{ID: "host"}, nil)
		require.NoError(t, err)

		code := m.Code()
		require.False(t, seen[code], "code %s handed out twice", code)
		seen[code] = true

		assert.Len(t, code, codeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected %q in %s", c, code)
		}
	}
	assert.Equal(t, 500, r.Count())
}

func TestMatchCreateRunsAdmitBeforeAnnouncing(t *testing.T) {
	var order []string
	publisher := game.PublisherFunc(func(recipients []string, event game.Event) {
		order = append(order, event.Kind.String())
	})
	r := NewMatchHolder(game.Rules{}, publisher, testStats(t), NewNopLogger())

	_, err := r.Create(game.PlayerInfo{ID: "host"}, func() { order = append(order, "admit") })
	require.NoError(t, err)
	assert.Equal(t, []string{"admit", "created", "lobby_update"}, order)
}

func TestMatchGet(t *testing.T) {
	r := newTestMatchHolder(t, game.Rules{})
	m, err := r.Create(game.PlayerInfo{ID: "host"}, nil)
	require.NoError(t, err)

	found, err := r.Get(" " + strings.ToLower(m.Code()) + " ")
	require.NoError(t, err)
	assert.Equal(t, m, found)

	_, err = r.Get("")
	assert.Equal(t, game.ErrMatchNotFound, err)

	r.Remove(m.Code())
	_, err = r.Get(m.Code())
	assert.Equal(t, game.ErrMatchNotFound, err)
}

// finishedMatch plays a one card game to the end.
func finishedMatch(t *testing.T, r *MatchHolder) *game.Match {
	m, err := r.Create(game.PlayerInfo{ID: "host"}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Join(game.PlayerInfo{ID: "guest"}, nil))
	require.NoError(t, m.Start("host"))

	card := m.Snapshot().Players[0].Hand[0]
	require.NoError(t, m.Play("host", card.ID, model.ColorRed))
	require.Equal(t, game.PhaseFinished, m.Phase())
	return m
}

func TestMatchSweep(t *testing.T) {
	r := newTestMatchHolder(t, game.Rules{HandSize: 1})

	lobby, err := r.Create(game.PlayerInfo{ID: "host"}, nil)
	require.NoError(t, err)
	finished := finishedMatch(t, r)

	assert.Zero(t, r.Sweep(time.Now(), time.Hour))
	assert.Equal(t, 2, r.Count())

	assert.Equal(t, 1, r.Sweep(finished.FinishedAt().Add(time.Hour), time.Hour))
	assert.Equal(t, 1, r.Count())

	_, err = r.Get(finished.Code())
	assert.Equal(t, game.ErrMatchNotFound, err)
	_, err = r.Get(lobby.Code())
	assert.NoError(t, err)
}

func TestRunSweeper(t *testing.T) {
	r := newTestMatchHolder(t, game.Rules{HandSize: 1})
	finishedMatch(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.RunSweeper(ctx, 10*time.Millisecond, 0) }()

	assert.Eventually(t, func() bool { return r.Count() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRunSweeperDisabled(t *testing.T) {
	r := newTestMatchHolder(t, game.Rules{HandSize: 1})
	finishedMatch(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, r.RunSweeper(ctx, time.Millisecond, -1))
	assert.Equal(t, 1, r.Count())
}
