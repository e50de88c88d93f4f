package command

import (
	"errors"
	"fmt"
)

// Stage is a step of a single command invocation.
//
//	Parsed -> ValueResolved -> TargetResolved -> Mutated -> Published | Skipped
//
// Any resolution step may end the invocation with a FailureError instead.
type Stage int

const (
	StageParsed Stage = iota
	StageValueResolved
	StageTargetResolved
	StageMutated
	StagePublished
	StageSkipped
)

func (s Stage) String() string {
	switch s {
	case StageParsed:
		return "parsed"
	case StageValueResolved:
		return "value_resolved"
	case StageTargetResolved:
		return "target_resolved"
	case StageMutated:
		return "mutated"
	case StagePublished:
		return "published"
	case StageSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Failure kinds. A FailureError unwraps to exactly one of these.
var (
	ErrUnsupportedTarget  = errors.New("unsupported target kind")
	ErrTargetNotFound     = errors.New("target not found")
	ErrAssetLoad          = errors.New("asset load failed")
	ErrAssetType          = errors.New("asset has wrong type")
	ErrNotDynamicMaterial = errors.New("target has no dynamic material")
)

// FailureError reports why a command could not apply its effect.
// Its message reads "Failed to <Action>. <Reason>."
type FailureError struct {
	Action string
	Reason string
	Stage  Stage // last stage reached before failing
	Kind   error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("Failed to %s. %s.", e.Action, e.Reason)
}

func (e *FailureError) Unwrap() error {
	return e.Kind
}
