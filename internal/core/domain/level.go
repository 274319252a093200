package domain

// Level identifies one granularity of the content tree, from whole
// document down to individual words.
type Level string

// The five tree levels, coarse to fine.
const (
	// LevelMega is the whole document.
	LevelMega Level = "mega"

	// LevelMacro is a group of related sections.
	LevelMacro Level = "macro"

	// LevelMeso is a single section (heading plus its sentences).
	LevelMeso Level = "meso"

	// LevelMicro is a single sentence.
	LevelMicro Level = "micro"

	// LevelNano is a single word token.
	LevelNano Level = "nano"
)

// Levels returns all levels ordered from coarsest (Mega) to finest (Nano).
func Levels() []Level {
	return []Level{LevelMega, LevelMacro, LevelMeso, LevelMicro, LevelNano}
}

// IsValid returns true if the level is recognised.
func (l Level) IsValid() bool {
	switch l {
	case LevelMega, LevelMacro, LevelMeso, LevelMicro, LevelNano:
		return true
	default:
		return false
	}
}

// Depth returns the distance from the root: Mega is 0, Nano is 4.
// Unknown levels return -1.
func (l Level) Depth() int {
	switch l {
	case LevelMega:
		return 0
	case LevelMacro:
		return 1
	case LevelMeso:
		return 2
	case LevelMicro:
		return 3
	case LevelNano:
		return 4
	default:
		return -1
	}
}

// Coarser returns true if l is closer to the root than other.
func (l Level) Coarser(other Level) bool {
	return l.Depth() < other.Depth()
}

// Child returns the next finer level, or false for Nano.
func (l Level) Child() (Level, bool) {
	switch l {
	case LevelMega:
		return LevelMacro, true
	case LevelMacro:
		return LevelMeso, true
	case LevelMeso:
		return LevelMicro, true
	case LevelMicro:
		return LevelNano, true
	default:
		return "", false
	}
}

// String returns the string representation.
func (l Level) String() string {
	return string(l)
}

// Description returns a human-readable description of the level.
func (l Level) Description() string {
	switch l {
	case LevelMega:
		return "Mega (whole document)"
	case LevelMacro:
		return "Macro (section group)"
	case LevelMeso:
		return "Meso (section)"
	case LevelMicro:
		return "Micro (sentence)"
	case LevelNano:
		return "Nano (word)"
	default:
		return unknownDescription
	}
}
