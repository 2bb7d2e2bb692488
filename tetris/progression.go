package tetris

const (
	LinePoints       = 10
	PointsPerLevel   = 500
	MaxLevel         = 10
	BaseDropInterval = 1000.0 // 毫秒
)

// LevelForScore 由累计分数计算等级：每 500 分升一级。
func LevelForScore(score int) int {
	return score/PointsPerLevel + 1
}

// DropInterval 返回某一等级的下落间隔（毫秒）。每升一级速度提升初始速度的 50%，
// 第 10 级之后不再加速。
func DropInterval(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return BaseDropInterval / (1 + float64(level-1)*0.5)
}
