package migrator

import (
	"strings"

	"github.com/pkg/errors"
)

// Direction selects whether versions are applied or rolled back.
type Direction int

const (
	// Up applies versions in ascending order using up.sql.
	Up Direction = iota
	// Down rolls versions back in descending order using down.sql.
	Down
)

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return Up, errors.Errorf("invalid migration direction %q", s)
	}
}

func (d Direction) String() string {
	if d == Down {
		return "down"
	}

	return "up"
}

// Filename is the script executed for the direction.
func (d Direction) Filename() string {
	if d == Down {
		return "down.sql"
	}

	return "up.sql"
}

// Verb describes the direction in progress messages.
func (d Direction) Verb() string {
	if d == Down {
		return "Rolling back"
	}

	return "Migrating"
}

// Noun names a single step in the direction.
func (d Direction) Noun() string {
	if d == Down {
		return "Rollback"
	}

	return "Migration"
}
