package structs

// Point 描述竞技场中的一个坐标，方块以包围盒左上角定位。
type Point struct {
	X int `json:"x"` // X坐标（列）
	Y int `json:"y"` // Y坐标（行）
}

// Matrix 是按行存放的二维格子，0 表示空格，1-7 表示方块类型/颜色。
type Matrix [][]int

// NewMatrix 创建一个 width 列 height 行、全部为 0 的矩阵。
func NewMatrix(width, height int) Matrix {
	m := make(Matrix, height)
	for y := range m {
		m[y] = make([]int, width)
	}
	return m
}

// Clone 深拷贝矩阵，返回的副本与原矩阵不共享任何行。
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	c := make(Matrix, len(m))
	for y, row := range m {
		c[y] = append([]int(nil), row...)
	}
	return c
}

// Width 返回矩阵的列数。
func (m Matrix) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Height 返回矩阵的行数。
func (m Matrix) Height() int {
	return len(m)
}

// Phase 描述一局游戏当前所处的阶段。
type Phase string

const (
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseGameOver Phase = "game_over"
	PhaseWon      Phase = "won"
)

// Terminal 为 true 时只有重新开始才能离开该阶段。
func (p Phase) Terminal() bool {
	return p == PhaseGameOver || p == PhaseWon
}

// CommandKind 是输入端可以发出的指令类型。
type CommandKind string

const (
	CommandMoveLeft    CommandKind = "left"
	CommandMoveRight   CommandKind = "right"
	CommandRotate      CommandKind = "rotate"
	CommandSoftDrop    CommandKind = "down"
	CommandTogglePause CommandKind = "pause"
	CommandRestart     CommandKind = "restart"
)

// Command 是一条排队等待游戏状态机处理的输入指令。
type Command struct {
	Kind CommandKind `json:"kind"`          // 指令类型
	Dir  int         `json:"dir,omitempty"` // 旋转方向，>0 顺时针，<0 逆时针
}

// Event 是状态机发生转换时对外发出的具名事件，音效端按事件播放声音。
type Event string

const (
	EventMove      Event = "move"
	EventRotate    Event = "rotate"
	EventDrop      Event = "drop" // 方块锁定
	EventLineClear Event = "lineclear"
	EventGameOver  Event = "gameover"
	EventWin       Event = "win"
	EventPause     Event = "pause"
	EventResume    Event = "resume"
	EventRestart   Event = "restart"
)

// Snapshot 是每帧交给渲染端的只读状态副本。
type Snapshot struct {
	Arena          Matrix  `json:"arena"`            // 竞技场格子
	Piece          Matrix  `json:"piece"`            // 当前下落的方块
	Pos            Point   `json:"pos"`              // 当前方块位置
	Next           Matrix  `json:"next"`             // 下一个方块
	Score          int     `json:"score"`            // 分数
	Level          int     `json:"level"`            // 等级
	Lines          int     `json:"lines"`            // 已消除行数
	Phase          Phase   `json:"phase"`            // 游戏阶段
	DropIntervalMs float64 `json:"drop_interval_ms"` // 当前下落间隔，毫秒
}

// Result 描述一局已经结束（失败或通关）的游戏，用于排行榜。
type Result struct {
	ID         int64  `json:"id"`          // 自增主键
	SessionID  string `json:"session_id"`  // 游戏会话标识
	Score      int    `json:"score"`       // 最终分数
	Level      int    `json:"level"`       // 最终等级
	Lines      int    `json:"lines"`       // 消除行数
	Outcome    Phase  `json:"outcome"`     // game_over 或 won
	FinishedAt int64  `json:"finished_at"` // 结束时间，时间戳
}

// Palette 是格子数值对应的颜色，下标 0 为空格。
var Palette = []string{
	"",
	"#FF0D72",
	"#0DC2FF",
	"#0DFF72",
	"#F538FF",
	"#FF8E0D",
	"#FFE138",
	"#3877FF",
}
