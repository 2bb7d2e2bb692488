package sqlite

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// :memory: 数据库每个连接独立
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	InitializeDatabase(db)
	return db
}

func TestInsertAndTopResults(t *testing.T) {
	db := openTestDB(t)

	entries := []structs.Result{
		{SessionID: "a", Score: 120, Level: 1, Lines: 9, Outcome: structs.PhaseGameOver, FinishedAt: 100},
		{SessionID: "b", Score: 5010, Level: 11, Lines: 300, Outcome: structs.PhaseWon, FinishedAt: 200},
		{SessionID: "a", Score: 640, Level: 2, Lines: 40, Outcome: structs.PhaseGameOver, FinishedAt: 300},
	}
	for i := range entries {
		require.NoError(t, InsertResult(db, &entries[i]))
		assert.NotZero(t, entries[i].ID)
	}

	top, err := TopResults(db, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, entries[1], top[0])
	assert.Equal(t, entries[2], top[1])
}

func TestSessionResults(t *testing.T) {
	db := openTestDB(t)

	first := structs.Result{SessionID: "s1", Score: 10, Level: 1, Outcome: structs.PhaseGameOver, FinishedAt: 10}
	second := structs.Result{SessionID: "s1", Score: 30, Level: 1, Outcome: structs.PhaseGameOver, FinishedAt: 20}
	other := structs.Result{SessionID: "s2", Score: 99, Level: 1, Outcome: structs.PhaseGameOver, FinishedAt: 15}
	for _, r := range []*structs.Result{&first, &second, &other} {
		require.NoError(t, InsertResult(db, r))
	}

	history, err := SessionResults(db, "s1")
	require.NoError(t, err)
	assert.Equal(t, []structs.Result{second, first}, history)

	empty, err := SessionResults(db, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
