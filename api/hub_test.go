package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshinonyaruko/tetris-in-im/sqlite"
	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

func TestHub_GetReusesGame(t *testing.T) {
	hub := newTestHub(t, nil, 0)

	a := hub.Get("same")
	b := hub.Get("same")
	assert.Same(t, a, b)

	_, ok := hub.Lookup("other")
	assert.False(t, ok)
}

func TestHub_ArchivesFinishedGameOnce(t *testing.T) {
	db := openTestDB(t)
	hub := newTestHub(t, db, 0)
	game := hub.Get("stack")

	// 全是 I 方块，竖着叠满中间一列后出生点被堵住
	drops := make([]structs.Command, 100)
	for i := range drops {
		drops[i] = structs.Command{Kind: structs.CommandSoftDrop}
	}
	game.Submit(drops...)

	require.Eventually(t, func() bool {
		return game.Snapshot().Phase == structs.PhaseGameOver
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		results, err := sqlite.SessionResults(db, "stack")
		return err == nil && len(results) == 1
	}, time.Second, 5*time.Millisecond)

	// 后续 tick 不会重复保存
	time.Sleep(50 * time.Millisecond)
	results, err := sqlite.SessionResults(db, "stack")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, structs.PhaseGameOver, results[0].Outcome)
	assert.Zero(t, results[0].Score)

	assert.Contains(t, game.TakeEvents(), structs.EventGameOver)
}

func TestHub_Expire(t *testing.T) {
	hub := newTestHub(t, nil, 30*time.Millisecond)
	game := hub.Get("idle")
	updates, _ := game.Subscribe()

	require.Eventually(t, func() bool {
		_, ok := hub.Lookup("idle")
		return !ok
	}, time.Second, 5*time.Millisecond)

	// 过期后订阅通道被关闭
	for range updates {
	}
}

func TestHub_SubscribeReceivesChanges(t *testing.T) {
	hub := newTestHub(t, nil, 0)
	game := hub.Get("live")
	updates, unsubscribe := game.Subscribe()
	defer unsubscribe()

	game.Submit(structs.Command{Kind: structs.CommandMoveLeft})

	select {
	case update := <-updates:
		assert.Equal(t, 3, update.State.Pos.X)
		assert.Contains(t, update.Events, structs.EventMove)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestHub_Delete(t *testing.T) {
	hub := newTestHub(t, nil, 0)
	hub.Get("gone")

	require.NoError(t, hub.Delete("gone"))
	assert.ErrorIs(t, hub.Delete("gone"), ErrSessionNotFound)
}
