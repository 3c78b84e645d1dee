package grammar

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the broad failure categories Build can
// report, mirroring the teacher's errors.New-plus-wrapping-struct style
// (nfa.ErrInvalidPattern / nfa.CompileError).
var (
	// ErrUnsatisfiable indicates the grammar accepts no string at all:
	// the start rule is not productive, i.e. none of its alternatives
	// derives a finite string.
	ErrUnsatisfiable = errors.New("grammar accepts no input")

	// ErrUnknownRule indicates a Nonterminal symbol referenced a RuleID
	// never declared via AddRule.
	ErrUnknownRule = errors.New("reference to undeclared rule")

	// ErrInvalidRepetition indicates a Repetition symbol's bounds are
	// malformed (min < 0, or max != -1 && max < min) or its Inner symbol
	// is itself a Nonterminal or Repetition.
	ErrInvalidRepetition = errors.New("invalid repetition bounds or inner symbol")

	// ErrNoStartRule indicates Build was called before SetStart.
	ErrNoStartRule = errors.New("no start rule set")
)

// BuildError wraps a Build-time failure with the rule it was discovered
// at, following the teacher's CompileError{Pattern, Err} shape.
type BuildError struct {
	Rule RuleID
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("grammar build failed at rule %d: %v", e.Rule, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
