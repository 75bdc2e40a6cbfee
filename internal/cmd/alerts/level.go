package alerts

import "fmt"

// Level is the severity of an alert.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelSuccess
)

type levelStyle struct {
	name  string
	icon  string
	color string
}

var levelStyles = map[Level]levelStyle{
	LevelError:   {name: "error", icon: "✗", color: "\033[31m"},
	LevelWarning: {name: "warning", icon: "!", color: "\033[33m"},
	LevelInfo:    {name: "info", icon: "i", color: "\033[36m"},
	LevelSuccess: {name: "success", icon: "✓", color: "\033[32m"},
}

const resetColor = "\033[0m"

func (l Level) String() string {
	if s, ok := levelStyles[l]; ok {
		return s.name
	}
	return fmt.Sprintf("unknown(%d)", int(l))
}

// Icon is printed before the message.
func (l Level) Icon() string {
	if s, ok := levelStyles[l]; ok {
		return s.icon
	}
	return "?"
}

// Color is the ANSI escape the alert is wrapped in on terminals.
func (l Level) Color() string {
	if s, ok := levelStyles[l]; ok {
		return s.color
	}
	return resetColor
}
