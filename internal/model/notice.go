package model

import "fmt"

// Level of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*l = LevelInfo
	case "warning":
		*l = LevelWarning
	case "error":
		*l = LevelError
	default:
		return fmt.Errorf("unknown notice level %q", text)
	}
	return nil
}

// Notice is a user-facing message that never aborts anything.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

func Info(format string, args ...any) Notice {
	return Notice{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

func Warning(format string, args ...any) Notice {
	return Notice{Level: LevelWarning, Text: fmt.Sprintf(format, args...)}
}

func Error(err error) Notice {
	return Notice{Level: LevelError, Text: err.Error()}
}
