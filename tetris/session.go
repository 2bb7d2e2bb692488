package tetris

import (
	"math/rand"
	"time"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

// Player 是当前正在下落的方块以及计分信息。
type Player struct {
	Shape structs.Matrix
	Pos   structs.Point
	Next  structs.Matrix
	Score int
	Level int
	Lines int
}

// Session 持有一局游戏的全部状态。它不是并发安全的：所有方法必须由同一个
// 执行者调用，输入通过 Submit 排队，在下一次 Update 时按顺序处理。
type Session struct {
	arena        *Arena
	player       Player
	phase        structs.Phase
	dropCounter  float64 // 毫秒
	dropInterval float64 // 毫秒
	rng          Randomizer
	queue        []structs.Command
	events       []structs.Event
	revision     uint64
}

type Option func(*Session)

// WithRandomizer 替换方块抽取使用的随机数来源。
func WithRandomizer(r Randomizer) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// NewSession 创建竞技场并生成第一个方块。
func NewSession(opts ...Option) *Session {
	s := &Session{
		arena:        NewArena(ArenaWidth, ArenaHeight),
		player:       Player{Level: 1},
		phase:        structs.PhaseRunning,
		dropInterval: BaseDropInterval,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.spawn()
	return s
}

func (s *Session) Phase() structs.Phase { return s.phase }
func (s *Session) Score() int           { return s.player.Score }
func (s *Session) Level() int           { return s.player.Level }
func (s *Session) Lines() int           { return s.player.Lines }

// Revision 在每次可见的状态变化后递增。
func (s *Session) Revision() uint64 { return s.revision }

// DropInterval 返回当前的自动下落间隔。
func (s *Session) DropInterval() time.Duration {
	return time.Duration(s.dropInterval * float64(time.Millisecond))
}

// Submit 把一条指令放入队列，下一次 Update 时处理。
func (s *Session) Submit(cmd structs.Command) {
	s.queue = append(s.queue, cmd)
}

// Update 先处理排队的指令，再推进下落计时器。暂停或结束时流逝的时间被丢弃。
func (s *Session) Update(elapsed time.Duration) {
	for _, cmd := range s.queue {
		s.Apply(cmd)
	}
	s.queue = s.queue[:0]

	if s.phase != structs.PhaseRunning {
		return
	}
	s.dropCounter += float64(elapsed) / float64(time.Millisecond)
	if s.dropCounter > s.dropInterval {
		s.Drop()
	}
}

// Apply 立即执行一条指令。
func (s *Session) Apply(cmd structs.Command) {
	switch cmd.Kind {
	case structs.CommandMoveLeft:
		s.Move(-1)
	case structs.CommandMoveRight:
		s.Move(1)
	case structs.CommandRotate:
		dir := cmd.Dir
		if dir == 0 {
			dir = 1
		}
		s.Rotate(dir)
	case structs.CommandSoftDrop:
		s.Drop()
	case structs.CommandTogglePause:
		s.TogglePause()
	case structs.CommandRestart:
		s.Restart()
	}
}

// Move 水平移动 dx 格，发生碰撞则撤销。返回是否真正移动。
func (s *Session) Move(dx int) bool {
	if s.phase != structs.PhaseRunning {
		return false
	}
	s.player.Pos.X += dx
	moved := true
	if Collide(s.arena, s.player.Shape, s.player.Pos) {
		s.player.Pos.X -= dx
		moved = false
	}
	s.emit(structs.EventMove)
	return moved
}

// Rotate 在原位置旋转当前方块，不做踢墙；碰撞时保持原状。
func (s *Session) Rotate(dir int) bool {
	if s.phase != structs.PhaseRunning {
		return false
	}
	shape, ok := TryRotate(s.arena, s.player.Shape, s.player.Pos, dir)
	s.player.Shape = shape
	s.emit(structs.EventRotate)
	return ok
}

// Drop 下落一行；无法下落时锁定方块。返回方块是否仍在下落。
func (s *Session) Drop() bool {
	if s.phase != structs.PhaseRunning {
		return false
	}
	s.dropCounter = 0
	s.player.Pos.Y++
	if !Collide(s.arena, s.player.Shape, s.player.Pos) {
		s.revision++
		return true
	}
	s.player.Pos.Y--
	s.lock()
	return false
}

// TogglePause 在运行与暂停之间切换，对已结束的游戏无效。
func (s *Session) TogglePause() {
	switch s.phase {
	case structs.PhaseRunning:
		s.phase = structs.PhasePaused
		s.emit(structs.EventPause)
	case structs.PhasePaused:
		s.phase = structs.PhaseRunning
		s.emit(structs.EventResume)
	}
}

// Restart 清空竞技场并重置分数、等级和速度，然后生成新方块。
func (s *Session) Restart() {
	s.arena.Clear()
	s.player.Score = 0
	s.player.Level = 1
	s.player.Lines = 0
	s.dropInterval = BaseDropInterval
	s.dropCounter = 0
	s.phase = structs.PhaseRunning
	s.emit(structs.EventRestart)
	s.spawn()
}

// Events 取出自上次调用以来发生的事件。
func (s *Session) Events() []structs.Event {
	events := s.events
	s.events = nil
	return events
}

// Snapshot 返回当前状态的拷贝。
func (s *Session) Snapshot() structs.Snapshot {
	return structs.Snapshot{
		Arena:          s.arena.Cells(),
		Piece:          s.player.Shape.Clone(),
		Pos:            s.player.Pos,
		Next:           s.player.Next.Clone(),
		Score:          s.player.Score,
		Level:          s.player.Level,
		Lines:          s.player.Lines,
		Phase:          s.phase,
		DropIntervalMs: s.dropInterval,
	}
}

func (s *Session) lock() {
	s.arena.Merge(s.player.Shape, s.player.Pos)

	points, rows := s.arena.Sweep()
	s.player.Score += points
	s.player.Lines += rows
	for i := 0; i < rows; i++ {
		s.emit(structs.EventLineClear)
	}

	s.updateScore()
	s.emit(structs.EventDrop)
	if s.phase == structs.PhaseRunning {
		s.spawn()
	}
}

func (s *Session) updateScore() {
	level := LevelForScore(s.player.Score)
	if level <= s.player.Level {
		return
	}
	s.player.Level = level
	if level <= MaxLevel {
		s.dropInterval = DropInterval(level)
		return
	}
	s.phase = structs.PhaseWon
	s.emit(structs.EventWin)
}

func (s *Session) spawn() {
	if s.player.Next == nil {
		s.player.Shape = RandomPiece(s.rng)
	} else {
		s.player.Shape = s.player.Next
	}
	s.player.Next = RandomPiece(s.rng)
	s.player.Pos = structs.Point{
		X: s.arena.Width()/2 - s.player.Shape.Width()/2,
		Y: 0,
	}
	s.revision++

	if Collide(s.arena, s.player.Shape, s.player.Pos) {
		s.phase = structs.PhaseGameOver
		s.emit(structs.EventGameOver)
	}
}

func (s *Session) emit(ev structs.Event) {
	s.events = append(s.events, ev)
	s.revision++
}
