package output

import (
	"github.com/pkg/errors"
	"github.com/pseudomuto/swellow/pkg/executor"
	"github.com/pseudomuto/swellow/pkg/migrator"
	"github.com/pseudomuto/swellow/pkg/parser"
)

// ErrorType is the coarse category reported in a JSON error object.
type ErrorType string

const (
	EngineError       ErrorType = "engine"
	FileNotFoundError ErrorType = "file_not_found"
	IOError           ErrorType = "io"
	ParserError       ErrorType = "parser"
	VersionError      ErrorType = "version"
)

// Classify maps err onto an ErrorType. Anything that is not a known
// migration, parser, or filesystem failure is attributed to the engine.
func Classify(err error) ErrorType {
	var (
		migErr      *migrator.Error
		intervalErr *executor.IntervalError
		ioErr       *executor.IOError
		tokenizeErr *parser.TokenizeError
		tokensErr   *parser.TokensError
	)

	switch {
	case errors.As(err, &migErr):
		return classifyMigrator(migErr.Kind)
	case errors.As(err, &intervalErr):
		return VersionError
	case errors.As(err, &ioErr):
		return IOError
	case errors.As(err, &tokenizeErr), errors.As(err, &tokensErr):
		return ParserError
	default:
		return EngineError
	}
}

func classifyMigrator(kind migrator.ErrorKind) ErrorType {
	switch kind {
	case migrator.FileNotFound, migrator.NoMigrationsInRange:
		return FileNotFoundError
	case migrator.InvalidVersionFormat, migrator.InvalidVersionNumber, migrator.DuplicateVersionNumber:
		return VersionError
	default:
		return IOError
	}
}
