package api

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
	"github.com/hoshinonyaruko/tetris-in-im/tetris"
)

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestRenderFrame_DrawsArenaAndPiece(t *testing.T) {
	const bs = 10
	arena := structs.NewMatrix(tetris.ArenaWidth, tetris.ArenaHeight)
	arena[19][0] = 1
	piece, _ := tetris.CreatePiece(tetris.PieceO)
	next, _ := tetris.CreatePiece(tetris.PieceI)

	img := RenderFrame(structs.Snapshot{
		Arena: arena,
		Piece: piece,
		Pos:   structs.Point{X: 4, Y: 2},
		Next:  next,
		Level: 1,
		Phase: structs.PhaseRunning,
	}, bs)

	assert.Equal(t, image.Rect(0, 0, (tetris.ArenaWidth+previewSize)*bs, tetris.ArenaHeight*bs), img.Bounds())
	assert.Equal(t, color.RGBA{0xFF, 0x0D, 0x72, 0xFF}, pixel(img, bs/2, 19*bs+bs/2))
	// O 方块占据 (4,2)-(5,3)
	assert.Equal(t, color.RGBA{0x0D, 0xC2, 0xFF, 0xFF}, pixel(img, 5*bs+bs/2, 3*bs+bs/2))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xFF}, pixel(img, 8*bs+bs/2, 8*bs+bs/2))
	// I 方块在 6x6 预览框内居中：列偏移 (6-4)/2 = 1，第 1 列有格子
	assert.Equal(t, color.RGBA{0xFF, 0x8E, 0x0D, 0xFF}, pixel(img, (tetris.ArenaWidth+2)*bs+bs/2, 2*bs+bs/2))
}

func TestOverlayText(t *testing.T) {
	assert.Equal(t, "", overlayText(structs.PhaseRunning))
	assert.Equal(t, "Paused", overlayText(structs.PhasePaused))
	assert.Equal(t, "Game Over", overlayText(structs.PhaseGameOver))
	assert.Equal(t, "You Win!", overlayText(structs.PhaseWon))
}

func TestRenderFrame_PausedOverlayDims(t *testing.T) {
	const bs = 10
	arena := structs.NewMatrix(tetris.ArenaWidth, tetris.ArenaHeight)
	for x := range arena[19] {
		arena[19][x] = 1
	}
	snap := structs.Snapshot{Arena: arena, Phase: structs.PhaseRunning}
	running := pixel(RenderFrame(snap, bs), 6*bs+bs/2, 19*bs+bs/2)

	snap.Phase = structs.PhasePaused
	paused := pixel(RenderFrame(snap, bs), 6*bs+bs/2, 19*bs+bs/2)

	assert.Less(t, paused.R, running.R)
}
