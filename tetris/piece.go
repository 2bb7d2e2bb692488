package tetris

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

// PieceType 是七种方块之一的字母标识。
type PieceType byte

const (
	PieceT PieceType = 'T'
	PieceO PieceType = 'O'
	PieceL PieceType = 'L'
	PieceJ PieceType = 'J'
	PieceI PieceType = 'I'
	PieceS PieceType = 'S'
	PieceZ PieceType = 'Z'
)

// PieceTypes 是随机抽取时使用的方块序列。
const PieceTypes = "ILJOTSZ"

var ErrUnknownPiece = errors.New("unknown piece type")

var catalog = map[PieceType]structs.Matrix{
	PieceT: {
		{0, 0, 0},
		{1, 1, 1},
		{0, 1, 0},
	},
	PieceO: {
		{2, 2},
		{2, 2},
	},
	PieceL: {
		{0, 3, 0},
		{0, 3, 0},
		{0, 3, 3},
	},
	PieceJ: {
		{0, 4, 0},
		{0, 4, 0},
		{4, 4, 0},
	},
	PieceI: {
		{0, 5, 0, 0},
		{0, 5, 0, 0},
		{0, 5, 0, 0},
		{0, 5, 0, 0},
	},
	PieceS: {
		{0, 6, 6},
		{6, 6, 0},
		{0, 0, 0},
	},
	PieceZ: {
		{7, 7, 0},
		{0, 7, 7},
		{0, 0, 0},
	},
}

// CreatePiece 返回一个新的、独立持有的方块矩阵。
func CreatePiece(t PieceType) (structs.Matrix, error) {
	shape, ok := catalog[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPiece, rune(t))
	}
	return shape.Clone(), nil
}

// Randomizer 是方块抽取使用的随机数来源，*rand.Rand 满足该接口。
type Randomizer interface {
	Intn(n int) int
}

// RandomPiece 等概率抽取一种方块，每次抽取互相独立（不做袋子洗牌）。
func RandomPiece(r Randomizer) structs.Matrix {
	shape, err := CreatePiece(PieceType(PieceTypes[r.Intn(len(PieceTypes))]))
	if err != nil {
		panic(err)
	}
	return shape
}

// Rotate 返回旋转 90 度后的新矩阵：先转置，dir > 0 时再翻转每一行（顺时针），
// 否则翻转行的顺序（逆时针）。原矩阵不会被修改。
func Rotate(shape structs.Matrix, dir int) structs.Matrix {
	rotated := structs.NewMatrix(shape.Height(), shape.Width())
	for y, row := range shape {
		for x, value := range row {
			rotated[x][y] = value
		}
	}

	if dir > 0 {
		for _, row := range rotated {
			slices.Reverse(row)
		}
	} else {
		slices.Reverse(rotated)
	}
	return rotated
}

// TryRotate 在原位置尝试旋转；如果旋转后发生碰撞，返回原矩阵和 false。
func TryRotate(a *Arena, shape structs.Matrix, pos structs.Point, dir int) (structs.Matrix, bool) {
	rotated := Rotate(shape, dir)
	if Collide(a, rotated, pos) {
		return shape, false
	}
	return rotated, true
}
