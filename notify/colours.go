package notify

const (
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Gray   = "\033[90m" // Bright black, often appears as gray

	RedInverse    = "\033[7;31m"
	GreenInverse  = "\033[7;32m"
	YellowInverse = "\033[7;33m"
	BlueInverse   = "\033[7;34m"

	ResetColor = "\033[0m" // Reset to default color
)

var levelColors = map[Level]string{
	LevelSuccess: GreenInverse,
	LevelError:   RedInverse,
	LevelWarning: YellowInverse,
	LevelInfo:    BlueInverse,
}

var levelIcons = map[Level]string{
	LevelSuccess: "✔",
	LevelError:   "✖",
	LevelWarning: "!",
	LevelInfo:    "i",
}
