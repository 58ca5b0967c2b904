package trace

import (
	"fmt"
	"strings"
)

// Level controls how fine-grained the recorded events are.
type Level uint8

const (
	LevelOff Level = iota
	// LevelCommand records the command and each file.
	LevelCommand
	// LevelStage adds invocations and pipeline stages.
	LevelStage
	// LevelDebug records everything, node events included.
	LevelDebug
)

var levelNames = [...]string{"off", "command", "stage", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", l)
}

// ParseLevel accepts the names printed by String, in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected one of %s)", s, strings.Join(levelNames[:], ", "))
}

// Admits reports whether events of scope are recorded at l.
func (l Level) Admits(scope Scope) bool {
	switch l {
	case LevelCommand:
		return scope <= ScopeFile
	case LevelStage:
		return scope <= ScopeStage
	case LevelDebug:
		return true
	}
	return false
}
