// Package command defines the lifecycle every scripted command follows and the
// commands this engine ships with.
//
// A command is driven along three paths:
//   - Execute runs it live and records a scenario property so the effect can
//     be replayed from a save.
//   - Preview applies the same effect for an editor without recording anything.
//   - RestoreFromSaveData re-applies previously recorded properties.
//
// Commands are stateless; parsed arguments travel with each call, so one
// command value may serve any number of scripts at once.
package command

import (
	"log/slog"

	"github.com/jwebster45206/stage-engine/pkg/presentation"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
)

// ProcessStatus is the outcome of a live execution.
type ProcessStatus int

const (
	ProcessNext ProcessStatus = iota
	ProcessError
)

func (s ProcessStatus) String() string {
	switch s {
	case ProcessNext:
		return "Next"
	case ProcessError:
		return "Error"
	default:
		return "Unknown"
	}
}

// PreviewStatus is the outcome of a preview.
type PreviewStatus int

const (
	PreviewComplete PreviewStatus = iota
	PreviewError
)

func (s PreviewStatus) String() string {
	switch s {
	case PreviewComplete:
		return "Complete"
	case PreviewError:
		return "Error"
	default:
		return "Unknown"
	}
}

// RestoreStatus is the outcome of restoring from save data.
type RestoreStatus int

const (
	RestoreComplete RestoreStatus = iota
	RestoreError
)

func (s RestoreStatus) String() string {
	switch s {
	case RestoreComplete:
		return "Complete"
	case RestoreError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Record is the raw command as authored in a script.
type Record interface {
	GetArg(name string) string
}

var _ Record = scenario.Command{}

// Args is a parsed argument bundle. It knows the property it is recorded under.
type Args interface {
	PropertyKey() string
	PropertyValue() string
}

// AssetResolver loads or returns a cached asset by authored path.
type AssetResolver interface {
	TryGetOrLoad(path string) (presentation.Asset, bool)
}

// TargetResolver finds live targets on the stage, one lookup per target kind.
type TargetResolver interface {
	TryFindImage(name string) (*presentation.Image, bool)
	TryFindRetainerBox(name string) (*presentation.RetainerBox, bool)
}

// PropertyStore receives scenario properties published by live executions.
type PropertyStore interface {
	Register(namespace, key, value string)
}

// Env carries the collaborators a command needs for one call.
type Env struct {
	Targets    TargetResolver
	Assets     AssetResolver
	Properties PropertyStore // nil: Execute publishes nothing
	Logger     *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Command is implemented by every command kind.
type Command interface {
	// Name is the command name used in scripts and the namespace its
	// scenario properties are stored under.
	Name() string

	// Parse pulls the command's arguments out of a raw record. Missing
	// arguments become empty strings; validation happens on execution.
	Parse(rec Record) Args

	// Execute applies the command and publishes its scenario property.
	Execute(rec Record, env Env) (ProcessStatus, error)

	// Preview applies the command without publishing anything.
	Preview(rec Record, env Env, isCurrent bool) (PreviewStatus, error)

	// RestoreFromSaveData re-applies every stored property of this command,
	// stopping at the first failure.
	RestoreFromSaveData(props []scenario.Property, env Env) (RestoreStatus, error)
}
