// 方块竞技场、碰撞与消行
package tetris

import "github.com/hoshinonyaruko/tetris-in-im/structs"

const (
	ArenaWidth  = 12
	ArenaHeight = 20
)

// Arena 是固定尺寸的竞技场，创建后宽高不再改变。
type Arena struct {
	width  int
	height int
	cells  structs.Matrix
}

// NewArena 创建一个全部为空的竞技场。
func NewArena(width, height int) *Arena {
	return &Arena{
		width:  width,
		height: height,
		cells:  structs.NewMatrix(width, height),
	}
}

func (a *Arena) Width() int  { return a.width }
func (a *Arena) Height() int { return a.height }

// At 返回 (x, y) 处的格子值，越界时 ok 为 false。
func (a *Arena) At(x, y int) (value int, ok bool) {
	if x < 0 || x >= a.width || y < 0 || y >= a.height {
		return 0, false
	}
	return a.cells[y][x], true
}

// Clear 原地把所有格子清零。
func (a *Arena) Clear() {
	for _, row := range a.cells {
		for x := range row {
			row[x] = 0
		}
	}
}

// Cells 返回格子的拷贝，供渲染使用。
func (a *Arena) Cells() structs.Matrix {
	return a.cells.Clone()
}

// Merge 把方块的非零格子写入竞技场；越界的格子被忽略。
func (a *Arena) Merge(shape structs.Matrix, pos structs.Point) {
	for y, row := range shape {
		for x, value := range row {
			if value == 0 {
				continue
			}
			ax, ay := pos.X+x, pos.Y+y
			if _, ok := a.At(ax, ay); ok {
				a.cells[ay][ax] = value
			}
		}
	}
}

// Collide 检查方块放在 pos 处是否与已有格子重叠，越界视为占用。
func Collide(a *Arena, shape structs.Matrix, pos structs.Point) bool {
	for y, row := range shape {
		for x, value := range row {
			if value == 0 {
				continue
			}
			if cell, ok := a.At(pos.X+x, pos.Y+y); !ok || cell != 0 {
				return true
			}
		}
	}
	return false
}

// Sweep 从底部向上扫描到第 1 行（第 0 行从不检查），移除满行并在顶部补一行空行。
// 同一次扫描中每多消一行，得分倍数翻倍：10、20、40……
func (a *Arena) Sweep() (points, rows int) {
	multiplier := 1
	for y := a.height - 1; y > 0; y-- {
		if !a.rowFull(y) {
			continue
		}

		row := a.cells[y]
		for x := range row {
			row[x] = 0
		}
		copy(a.cells[1:y+1], a.cells[:y])
		a.cells[0] = row
		// 上面的行已经下移到 y，需要重新检查这一行
		y++

		points += multiplier * LinePoints
		multiplier *= 2
		rows++
	}
	return points, rows
}

func (a *Arena) rowFull(y int) bool {
	for _, value := range a.cells[y] {
		if value == 0 {
			return false
		}
	}
	return true
}
