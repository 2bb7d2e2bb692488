package api

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/tetris-in-im/memimg"
	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

// 下一个方块预览框的边长（格）
const previewSize = 6

// 背景（底色与网格线）只和尺寸有关，按尺寸缓存
var backgroundCache sync.Map

// RenderFrame 把一帧状态绘制成图片：左侧竞技场，右侧下一个方块和分数。
func RenderFrame(snap structs.Snapshot, blockSize int) image.Image {
	cols, rows := snap.Arena.Width(), snap.Arena.Height()
	boardWidth := cols * blockSize
	boardHeight := rows * blockSize

	dc := gg.NewContext(boardWidth+previewSize*blockSize, boardHeight)
	dc.DrawImage(background(cols, rows, blockSize), 0, 0)

	board := gg.NewContext(boardWidth, boardHeight)
	drawMatrix(board, snap.Arena, 0, 0, blockSize)
	drawMatrix(board, snap.Piece, float64(snap.Pos.X), float64(snap.Pos.Y), blockSize)

	message := overlayText(snap.Phase)
	var boardImg image.Image = board.Image()
	if message != "" {
		// 暂停/结束时模糊棋盘再叠加提示
		boardImg = imaging.Blur(boardImg, 2.5)
	}
	dc.DrawImage(boardImg, 0, 0)

	if message != "" {
		dc.SetRGBA(0, 0, 0, 0.45)
		dc.DrawRectangle(0, 0, float64(boardWidth), float64(boardHeight))
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(message, float64(boardWidth)/2, float64(boardHeight)/2, 0.5, 0.5)
	}

	if snap.Next != nil {
		offsetX := float64(cols) + float64(previewSize-snap.Next.Width())/2
		offsetY := float64(previewSize-snap.Next.Height()) / 2
		drawMatrix(dc, snap.Next, offsetX, offsetY, blockSize)
	}

	panelX := float64(boardWidth) + 6
	lineY := float64((previewSize + 1) * blockSize)
	dc.SetRGB(1, 1, 1)
	for _, line := range []string{
		fmt.Sprintf("SCORE %d", snap.Score),
		fmt.Sprintf("LEVEL %d", snap.Level),
		fmt.Sprintf("LINES %d", snap.Lines),
	} {
		dc.DrawString(line, panelX, lineY)
		lineY += float64(blockSize)
	}

	return dc.Image()
}

func overlayText(phase structs.Phase) string {
	switch phase {
	case structs.PhasePaused:
		return "Paused"
	case structs.PhaseGameOver:
		return "Game Over"
	case structs.PhaseWon:
		return "You Win!"
	}
	return ""
}

// drawMatrix 在 (offsetX, offsetY)（以格为单位）处绘制矩阵的非零格子。
// 有贴图时使用贴图，否则使用调色板纯色。
func drawMatrix(dc *gg.Context, m structs.Matrix, offsetX, offsetY float64, blockSize int) {
	size := float64(blockSize)
	for y, row := range m {
		for x, value := range row {
			if value <= 0 || value >= len(structs.Palette) {
				continue
			}
			px := (offsetX + float64(x)) * size
			py := (offsetY + float64(y)) * size
			if tile, ok := memimg.GetTile(value); ok {
				dc.DrawImage(tile, int(px), int(py))
				continue
			}
			dc.SetHexColor(structs.Palette[value])
			dc.DrawRectangle(px, py, size, size)
			dc.Fill()
		}
	}
}

func background(cols, rows, blockSize int) image.Image {
	key := fmt.Sprintf("%d_%d_%d", cols, rows, blockSize)
	if cached, ok := backgroundCache.Load(key); ok {
		return cached.(image.Image)
	}

	boardWidth := cols * blockSize
	height := rows * blockSize
	dc := gg.NewContext(boardWidth+previewSize*blockSize, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	// 右侧面板
	dc.SetRGB(0.1, 0.1, 0.12)
	dc.DrawRectangle(float64(boardWidth), 0, float64(previewSize*blockSize), float64(height))
	dc.Fill()

	renderGrid(dc, boardWidth, height, blockSize)

	img := dc.Image()
	backgroundCache.Store(key, img)
	return img
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetRGB(0.15, 0.15, 0.15)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

// EncodePNG 把图片编码为 PNG。
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFrame 把图片保存为 dir/<id>.png 并返回文件名。
func SaveFrame(img image.Image, dir, id string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	fileName := id + ".png"
	if err := gg.SavePNG(filepath.Join(dir, fileName), img); err != nil {
		return "", err
	}
	return fileName, nil
}
