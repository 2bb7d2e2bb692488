// 终端版本：tcell 绘制，beep 播放声音，游戏状态机与服务端共用
package terminal

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	previewSize   = 6
	boardX        = 2 // 棋盘左边框所在列
	boardY        = 1
)

// Session 是终端前端需要的状态机接口，*tetris.Session 满足该接口
type Session interface {
	Submit(cmd structs.Command)
	Update(elapsed time.Duration)
	Events() []structs.Event
	Snapshot() structs.Snapshot
}

type Game struct {
	screen  tcell.Screen
	session Session
	sound   *SoundManager
}

func NewGame(screen tcell.Screen, session Session, sound *SoundManager) *Game {
	return &Game{screen: screen, session: session, sound: sound}
}

// Run 打开终端并运行游戏，直到玩家退出
func Run(session Session) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	sound := NewSoundManager()
	if err := sound.Initialize(); err != nil {
		// 没有声音也能玩
		log.Printf("Audio initialization failed: %v", err)
	}
	defer sound.Cleanup()

	NewGame(screen, session, sound).run()
	return nil
}

func (g *Game) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	g.draw()
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !g.handleKey(ev.Key(), ev.Rune()) {
					return
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}

		case now := <-ticker.C:
			g.step(now.Sub(last))
			last = now
		}
	}
}

// commandForKey 把按键映射为游戏指令
func commandForKey(key tcell.Key, r rune) (structs.Command, bool) {
	switch key {
	case tcell.KeyLeft:
		return structs.Command{Kind: structs.CommandMoveLeft}, true
	case tcell.KeyRight:
		return structs.Command{Kind: structs.CommandMoveRight}, true
	case tcell.KeyDown:
		return structs.Command{Kind: structs.CommandSoftDrop}, true
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return structs.Command{Kind: structs.CommandRotate, Dir: -1}, true
		case 'w', 'W':
			return structs.Command{Kind: structs.CommandRotate, Dir: 1}, true
		case ' ':
			return structs.Command{Kind: structs.CommandTogglePause}, true
		case 'r', 'R':
			return structs.Command{Kind: structs.CommandRestart}, true
		}
	}
	return structs.Command{}, false
}

// handleKey 处理一次按键，返回 false 表示退出
func (g *Game) handleKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC {
		return false
	}

	g.sound.StartMusic()
	if key == tcell.KeyRune {
		switch r {
		case 'm', 'M':
			g.sound.ToggleMusic()
			return true
		case 'n', 'N':
			g.sound.ToggleSfx()
			return true
		}
	}

	if cmd, ok := commandForKey(key, r); ok {
		g.session.Submit(cmd)
	}
	return true
}

// step 推进一帧：状态机更新、音效、重绘
func (g *Game) step(elapsed time.Duration) {
	g.session.Update(elapsed)
	g.sound.Handle(g.session.Events())
	g.draw()
}

func cellStyle(value int) tcell.Style {
	if value <= 0 || value >= len(structs.Palette) {
		return tcell.StyleDefault.Background(tcell.ColorBlack)
	}
	return tcell.StyleDefault.Background(tcell.GetColor(structs.Palette[value]))
}

// drawCell 每个格子占两列
func (g *Game) drawCell(x, y int, style tcell.Style) {
	g.screen.SetContent(x, y, ' ', nil, style)
	g.screen.SetContent(x+1, y, ' ', nil, style)
}

func (g *Game) drawMatrix(m structs.Matrix, originX, originY int) {
	for y, row := range m {
		for x, value := range row {
			if value == 0 {
				continue
			}
			g.drawCell(originX+x*2, originY+y, cellStyle(value))
		}
	}
}

func (g *Game) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		g.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (g *Game) drawBox(x, y, w, h int, style tcell.Style) {
	for i := 1; i < w-1; i++ {
		g.screen.SetContent(x+i, y, '─', nil, style)
		g.screen.SetContent(x+i, y+h-1, '─', nil, style)
	}
	for j := 1; j < h-1; j++ {
		g.screen.SetContent(x, y+j, '│', nil, style)
		g.screen.SetContent(x+w-1, y+j, '│', nil, style)
	}
	g.screen.SetContent(x, y, '┌', nil, style)
	g.screen.SetContent(x+w-1, y, '┐', nil, style)
	g.screen.SetContent(x, y+h-1, '└', nil, style)
	g.screen.SetContent(x+w-1, y+h-1, '┘', nil, style)
}

func (g *Game) draw() {
	snap := g.session.Snapshot()
	cols, rows := snap.Arena.Width(), snap.Arena.Height()
	border := tcell.StyleDefault.Foreground(tcell.ColorGray)
	text := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	g.screen.Clear()

	originX, originY := boardX+1, boardY+1
	g.drawBox(boardX, boardY, cols*2+2, rows+2, border)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g.drawCell(originX+x*2, originY+y, cellStyle(snap.Arena[y][x]))
		}
	}
	g.drawMatrix(snap.Piece, originX+snap.Pos.X*2, originY+snap.Pos.Y)

	// 右侧：下一个方块预览与分数
	panelX := boardX + cols*2 + 3
	g.drawBox(panelX, boardY, previewSize*2+2, previewSize+2, border)
	if snap.Next != nil {
		offsetX := (previewSize - snap.Next.Width()) / 2
		offsetY := (previewSize - snap.Next.Height()) / 2
		g.drawMatrix(snap.Next, panelX+1+offsetX*2, boardY+1+offsetY)
	}

	lineY := boardY + previewSize + 3
	for _, line := range []string{
		fmt.Sprintf("SCORE %d", snap.Score),
		fmt.Sprintf("LEVEL %d", snap.Level),
		fmt.Sprintf("LINES %d", snap.Lines),
	} {
		g.drawText(panelX, lineY, line, text)
		lineY++
	}
	g.drawText(panelX, lineY+1, "←→↓ move  Q/W rotate", border)
	g.drawText(panelX, lineY+2, "SPC pause  R restart", border)
	g.drawText(panelX, lineY+3, "M music  N sfx  ESC quit", border)

	if message := overlayText(snap.Phase); message != "" {
		x := originX + cols - len(message)/2
		g.drawText(x, originY+rows/2, message, text.Bold(true).Reverse(true))
	}

	g.screen.Show()
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
