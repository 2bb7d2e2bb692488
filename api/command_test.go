package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

func TestParseCommand(t *testing.T) {
	cases := map[string]structs.Command{
		"left":       {Kind: structs.CommandMoveLeft},
		"Right":      {Kind: structs.CommandMoveRight},
		" rotate ":   {Kind: structs.CommandRotate, Dir: 1},
		"w":          {Kind: structs.CommandRotate, Dir: 1},
		"rotate-ccw": {Kind: structs.CommandRotate, Dir: -1},
		"q":          {Kind: structs.CommandRotate, Dir: -1},
		"drop":       {Kind: structs.CommandSoftDrop},
		"pause":      {Kind: structs.CommandTogglePause},
		"restart":    {Kind: structs.CommandRestart},
	}
	for name, want := range cases {
		got, err := ParseCommand(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseCommand("jump")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestParseCommands(t *testing.T) {
	cmds, err := ParseCommands("left, ,down,rotate")
	require.NoError(t, err)
	assert.Equal(t, []structs.Command{
		{Kind: structs.CommandMoveLeft},
		{Kind: structs.CommandSoftDrop},
		{Kind: structs.CommandRotate, Dir: 1},
	}, cmds)

	_, err = ParseCommands("left,jump")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = ParseCommands(" , ")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, validSessionID("group_123-abc"))
	assert.False(t, validSessionID(""))
	assert.False(t, validSessionID("../etc"))
	assert.False(t, validSessionID("a b"))
	assert.False(t, validSessionID(strings.Repeat("x", 65)))
}
