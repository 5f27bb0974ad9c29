package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLoadsLazilyOnce(t *testing.T) {
	loads := 0
	registry := NewRegistry(func(ctx context.Context, code string) (*State, error) {
		loads++
		return newState(Game{ID: "g1", Code: code, Status: GameWaiting}), nil
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		state, err := registry.Get(ctx, "ABCDEF")
		require.NoError(t, err)
		assert.Equal(t, "g1", state.Game.ID)
	}
	assert.Equal(t, 1, loads)
	assert.Equal(t, []string{"ABCDEF"}, registry.Codes())
}

func TestRegistryDoesNotCacheFailedLoads(t *testing.T) {
	fail := true
	registry := NewRegistry(func(ctx context.Context, code string) (*State, error) {
		if fail {
			return nil, ErrGameNotFound
		}
		return newState(Game{Code: code}), nil
	})
	ctx := context.Background()

	_, err := registry.Get(ctx, "ABCDEF")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, registry.Codes())

	fail = false
	_, err = registry.Get(ctx, "ABCDEF")
	require.NoError(t, err)
}

func TestRegistrySerializesPerGame(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Put("ABCDEF", newState(Game{Code: "ABCDEF"}))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = registry.With(ctx, "ABCDEF", func(state *State) error {
				state.Game.Name += "x"
				return nil
			})
		}()
	}
	wg.Wait()
	state, err := registry.Get(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Len(t, state.Game.Name, 50)
}

func TestRegistryRemoveInsideWith(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Put("ABCDEF", newState(Game{Code: "ABCDEF"}))
	ctx := context.Background()

	err := registry.With(ctx, "ABCDEF", func(state *State) error {
		registry.Remove("ABCDEF")
		return nil
	})
	require.NoError(t, err)
	_, err = registry.Get(ctx, "ABCDEF")
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestSelectPlayerIsUniform(t *testing.T) {
	selector := NewSelector(1)
	players := []*Player{
		{ID: "alice", Status: PlayerWaiting},
		{ID: "bob", Status: PlayerWaiting},
		{ID: "cara", Status: PlayerWaiting},
	}
	counts := make(map[string]int)
	const trials = 3000
	for i := 0; i < trials; i++ {
		player, err := selector.SelectPlayer(players)
		require.NoError(t, err)
		counts[player.ID]++
	}
	for id, count := range counts {
		assert.InDelta(t, trials/3, count, 150, "player %s", id)
	}
	assert.Len(t, counts, 3)
}

func TestSelectPlayerSkipsIneligible(t *testing.T) {
	selector := NewSelector(1)
	players := []*Player{
		{ID: "done", HasPlayed: true, Status: PlayerWaiting},
		{ID: "busy", Status: PlayerPreparing},
		{ID: "next", Status: PlayerWaiting},
	}
	for i := 0; i < 20; i++ {
		player, err := selector.SelectPlayer(players)
		require.NoError(t, err)
		assert.Equal(t, "next", player.ID)
	}
	_, err := selector.SelectPlayer(players[:2])
	require.ErrorIs(t, err, ErrNoEligiblePlayers)
}

func TestSelectCategoryExhaustsBeforeRepeating(t *testing.T) {
	selector := NewSelector(3)
	all := DefaultWords().CategoryList
	used := make([]string, 0, len(all))
	for range all {
		category := selector.SelectCategory(used, all)
		assert.NotContains(t, used, category)
		used = append(used, category)
	}
	assert.ElementsMatch(t, all, used)
	assert.Contains(t, all, selector.SelectCategory(used, all))
	assert.Empty(t, selector.SelectCategory(nil, nil))
}

func TestTimersExpireOnceAndTick(t *testing.T) {
	clock := newFakeClock()
	timers := NewTimers(clock.Now, clock.Schedule, time.Second)
	var ticks []time.Duration
	expired := 0

	deadline := timers.Start("ABCDEF", "r1", 5*time.Second, TimerHooks{
		OnTick:   func(remaining time.Duration) { ticks = append(ticks, remaining) },
		OnExpire: func() { expired++ },
	})
	assert.Equal(t, clock.Now().Add(5*time.Second), deadline)
	assert.Equal(t, 5*time.Second, timers.Remaining("ABCDEF"))
	assert.False(t, timers.IsExpired("ABCDEF"))

	clock.Advance(2 * time.Second)
	assert.Equal(t, 3*time.Second, timers.Remaining("ABCDEF"))
	roundID, running := timers.Running("ABCDEF")
	assert.True(t, running)
	assert.Equal(t, "r1", roundID)

	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, expired)
	assert.Equal(t, []time.Duration{4 * time.Second, 3 * time.Second, 2 * time.Second, time.Second}, ticks)
	_, running = timers.Running("ABCDEF")
	assert.False(t, running)
	assert.Zero(t, timers.Remaining("ABCDEF"))
}

func TestTimersStopAndReplace(t *testing.T) {
	clock := newFakeClock()
	timers := NewTimers(clock.Now, clock.Schedule, 0)
	fired := make([]string, 0)
	hooks := func(id string) TimerHooks {
		return TimerHooks{OnExpire: func() { fired = append(fired, id) }}
	}

	timers.Start("ABCDEF", "r1", 5*time.Second, hooks("r1"))
	timers.Start("ABCDEF", "r2", 10*time.Second, hooks("r2"))
	timers.Start("GHJKLM", "r3", 5*time.Second, hooks("r3"))
	timers.Stop("GHJKLM")

	clock.Advance(20 * time.Second)
	assert.Equal(t, []string{"r2"}, fired)

	timers.StartAt("ABCDEF", "r4", clock.Now().Add(-time.Second), hooks("r4"))
	assert.True(t, timers.IsExpired("ABCDEF"))
	clock.Advance(0)
	assert.Equal(t, []string{"r2", "r4"}, fired)
}

func TestArbiterCheckOrder(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	arbiter := Arbiter{Cooldown: 800 * time.Millisecond, CorrectPoints: 5, WrongPoints: -2}
	state := newState(Game{Status: GameInProgress})
	state.ActorID = "actor"
	state.Phase = PhasePreparing

	_, err := arbiter.Evaluate(state, "other", ActionCorrect, now)
	assert.Equal(t, ErrNotCurrentPlayer, err)

	_, err = arbiter.Evaluate(state, "actor", ActionCorrect, now)
	assert.Equal(t, ErrNotPlaying, err)

	state.Phase = PhasePlaying
	state.Deadline = now
	_, err = arbiter.Evaluate(state, "actor", ActionCorrect, now)
	assert.Equal(t, ErrPlayTimeExpired, err)

	state.Deadline = now.Add(time.Minute)
	verdict, err := arbiter.Evaluate(state, "actor", ActionWrong, now)
	require.NoError(t, err)
	assert.Equal(t, Verdict{Delta: -2}, verdict)

	player := &Player{ID: "actor"}
	arbiter.Apply(state, player, verdict, now)
	assert.Equal(t, -2, player.Score)

	verdict, err = arbiter.Evaluate(state, "actor", ActionCorrect, now.Add(799*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, verdict.Dropped)

	verdict, err = arbiter.Evaluate(state, "actor", ActionCorrect, now.Add(800*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 5, verdict.Delta)
}

func TestRankEmotionBuckets(t *testing.T) {
	players := []Player{
		{ID: "a", Name: "A", Score: 30},
		{ID: "b", Name: "B", Score: 50},
		{ID: "c", Name: "C", Score: 10},
		{ID: "d", Name: "D", Score: 30},
	}
	results := Rank(players)

	ids := make([]string, 0, 4)
	ranks := make([]int, 0, 4)
	emotions := make([]Emotion, 0, 4)
	for _, standing := range results.Leaderboard {
		ids = append(ids, standing.PlayerID)
		ranks = append(ranks, standing.Rank)
		emotions = append(emotions, standing.Emotion)
	}
	assert.Equal(t, []string{"b", "a", "d", "c"}, ids)
	assert.Equal(t, []int{1, 2, 3, 4}, ranks)
	assert.Equal(t, []Emotion{EmotionPositive, EmotionNeutral, EmotionNeutral, EmotionNegative}, emotions)
	assert.Len(t, results.Podium, 3)
	assert.Equal(t, 4, results.TotalPlayers)
}

func TestRankSmallTables(t *testing.T) {
	solo := Rank([]Player{{ID: "a", Score: 3}})
	assert.Equal(t, EmotionPositive, solo.Leaderboard[0].Emotion)
	assert.Len(t, solo.Podium, 1)

	empty := Rank(nil)
	assert.Empty(t, empty.Leaderboard)
	assert.Empty(t, empty.Podium)
}

func TestErrorKindsAndMessages(t *testing.T) {
	storage := Unavailable("update player", errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, storage, ErrStorageUnavailable)
	assert.Equal(t, "Service temporarily unavailable", Message(storage))
	assert.Contains(t, storage.Error(), "connection refused")

	assert.Equal(t, ErrGameNotFound, Unavailable("load", ErrGameNotFound))
	assert.ErrorIs(t, ErrNotCurrentPlayer, ErrUnauthorized)
	assert.Equal(t, "Something went wrong", Message(errors.New("boom")))
	assert.Empty(t, Message(nil))
}

func TestJoinCodes(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewJoinCode()
		require.True(t, ValidJoinCode(code), code)
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "1")
	}
	assert.Equal(t, "ABC234", NormalizeCode(" abc234 "))
	assert.False(t, ValidJoinCode("ABC"))
}

func TestGamePlayingHidesWordFromActor(t *testing.T) {
	event := GamePlaying{PlayerID: "actor", Word: "Surfing", Duration: time.Minute}

	actorView, err := json.Marshal(Render(event, "actor"))
	require.NoError(t, err)
	assert.NotContains(t, string(actorView), "Surfing")
	assert.Contains(t, string(actorView), `"word":null`)
	assert.Contains(t, string(actorView), `"timer_duration":60`)

	guesserView, err := json.Marshal(Render(event, "someone"))
	require.NoError(t, err)
	assert.Contains(t, string(guesserView), `"word":"Surfing"`)

	observerView, err := json.Marshal(Render(event, Observer))
	require.NoError(t, err)
	assert.Contains(t, string(observerView), `"word":"Surfing"`)

	anonymousView, err := json.Marshal(Render(event, ""))
	require.NoError(t, err)
	assert.NotContains(t, string(anonymousView), "Surfing")
}

func TestRenderEnvelopes(t *testing.T) {
	results := Rank([]Player{{ID: "p1", Name: "Ada", Score: 30}})
	cases := []struct {
		event Event
		want  EventType
	}{
		{PlayerPreparingEvent{PlayerID: "p1", Category: "Sports"}, EventPlayerPreparing},
		{RoundCompleteEvent{RoundID: "r1", Word: "Yoga", Reason: "time_expired"}, EventRoundComplete},
		{GameFinishedEvent{Results: results}, EventGameFinished},
		{Pong{}, EventPong},
	}
	for _, tc := range cases {
		envelope := Render(tc.event, "p1")
		assert.Equal(t, tc.want, envelope.Type)
	}

	preparing := Render(PlayerPreparingEvent{PlayerID: "p1"}, "p1").Payload.(map[string]any)
	assert.Equal(t, true, preparing["preparation_required"])
	assert.Equal(t, results, Render(GameFinishedEvent{Results: results}, "").Payload)

	data, err := json.Marshal(Render(Pong{}, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PONG"}`, string(data))
}

func TestStateCloneKeepsPendingWrites(t *testing.T) {
	state := newState(Game{Code: "ABCDEF"})
	state.markFailed(playerKey("p1"), errors.New("connection refused"), func(context.Context) error { return nil })

	clone := state.Clone()
	assert.Equal(t, 1, clone.PendingWrites())

	require.ErrorIs(t, clone.takeFailure(playerKey("p1")), ErrStorageUnavailable)
	require.ErrorIs(t, state.takeFailure(playerKey("p1")), ErrStorageUnavailable)
	delete(clone.pending, playerKey("p1"))
	assert.Equal(t, 1, state.PendingWrites())
}

func TestSnapshotHidesWordOutsidePlay(t *testing.T) {
	state := newState(Game{Code: "ABCDEF", Status: GameInProgress})
	state.Players = []*Player{{ID: "actor", Status: PlayerPreparing}, {ID: "viewer", Status: PlayerWaiting}}
	state.Round = &Round{ID: "r1", Word: "Yoga", Status: RoundInProgress}
	state.ActorID = "actor"
	state.Phase = PhasePreparing

	snap := NewSnapshot(state, "viewer", time.Now())
	assert.Empty(t, snap.CurrentRound.Word)

	state.Phase = PhasePlaying
	snap = NewSnapshot(state, "viewer", time.Now())
	assert.Equal(t, "Yoga", snap.CurrentRound.Word)
	snap = NewSnapshot(state, "actor", time.Now())
	assert.Empty(t, snap.CurrentRound.Word)
	assert.True(t, snap.YouAreCurrentPlayer)

	assert.Empty(t, NewSnapshot(state, "", time.Now()).CurrentRound.Word)
	assert.Equal(t, "Yoga", NewSnapshot(state, Observer, time.Now()).CurrentRound.Word)
	assert.Empty(t, NewSnapshot(state, state.viewer("stranger"), time.Now()).CurrentRound.Word)
}
