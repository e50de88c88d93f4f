// Package engine runs scripts through the command registry and restores play
// sessions from save data.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/stage-engine/pkg/command"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
)

// StepError wraps a failure of one scripted step.
type StepError struct {
	Step    int
	Command string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Command, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Engine executes scripted commands against one stage.
type Engine struct {
	registry *command.Registry
	targets  command.TargetResolver
	assets   command.AssetResolver
	props    *scenario.Properties
	logger   *slog.Logger
}

// New creates an engine with an empty property store.
func New(registry *command.Registry, targets command.TargetResolver, assets command.AssetResolver, logger *slog.Logger) *Engine {
	if registry == nil {
		registry = command.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		targets:  targets,
		assets:   assets,
		props:    scenario.NewProperties(),
		logger:   logger,
	}
}

// Properties returns the live scenario property store.
func (e *Engine) Properties() *scenario.Properties {
	return e.props
}

func (e *Engine) env() command.Env {
	return command.Env{
		Targets:    e.targets,
		Assets:     e.assets,
		Properties: e.props,
		Logger:     e.logger,
	}
}

func (e *Engine) lookup(step int, name string) (command.Command, error) {
	cmd, ok := e.registry.Lookup(name)
	if !ok {
		return nil, &StepError{Step: step, Command: name, Err: fmt.Errorf("unknown command %s", name)}
	}
	return cmd, nil
}

// Run executes every command of the script in order and returns the number of
// steps completed. It stops at the first failing step.
func (e *Engine) Run(ctx context.Context, script *scenario.Script) (int, error) {
	env := e.env()
	for i, rec := range script.Commands {
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("script %s cancelled: %w", script.Name, err)
		}

		cmd, err := e.lookup(i, rec.Name)
		if err != nil {
			return i, err
		}

		status, err := cmd.Execute(rec, env)
		if status != command.ProcessNext {
			if err == nil {
				err = fmt.Errorf("command returned %s", status)
			}
			e.logger.Error("Script step failed", "script", script.Name, "step", i, "command", rec.Name, "error", err)
			return i, &StepError{Step: i, Command: rec.Name, Err: err}
		}
	}

	e.logger.Info("Script executed", "script", script.Name, "steps", len(script.Commands), "properties", e.props.Len())
	return len(script.Commands), nil
}

// Preview previews commands 0 through step. Only the command at step is
// previewed as the current one. Previews never record scenario properties.
func (e *Engine) Preview(script *scenario.Script, step int) error {
	if step < 0 || step >= len(script.Commands) {
		return fmt.Errorf("step %d out of range (script has %d commands)", step, len(script.Commands))
	}

	env := e.env()
	env.Properties = nil
	for i := 0; i <= step; i++ {
		rec := script.Commands[i]
		cmd, err := e.lookup(i, rec.Name)
		if err != nil {
			return err
		}

		status, err := cmd.Preview(rec, env, i == step)
		if status != command.PreviewComplete {
			if err == nil {
				err = fmt.Errorf("preview returned %s", status)
			}
			return &StepError{Step: i, Command: rec.Name, Err: err}
		}
	}
	return nil
}

// Restore replaces the property store with the save's properties and replays
// them. Namespaces are restored in the order they first appear; the first
// failure aborts the restore.
func (e *Engine) Restore(ctx context.Context, save *scenario.SaveData) error {
	e.props = scenario.NewProperties(save.Properties...)
	env := e.env()

	var order []string
	grouped := make(map[string][]scenario.Property)
	for _, p := range e.props.Iterate() {
		if _, seen := grouped[p.Namespace]; !seen {
			order = append(order, p.Namespace)
		}
		grouped[p.Namespace] = append(grouped[p.Namespace], p)
	}

	for _, ns := range order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("restore cancelled: %w", err)
		}

		cmd, ok := e.registry.Lookup(ns)
		if !ok {
			return fmt.Errorf("no command registered for namespace %s", ns)
		}

		status, err := cmd.RestoreFromSaveData(grouped[ns], env)
		if status != command.RestoreComplete {
			if err == nil {
				err = fmt.Errorf("restore returned %s", status)
			}
			e.logger.Error("Restore failed", "save_id", save.ID, "namespace", ns, "error", err)
			return fmt.Errorf("restore %s: %w", ns, err)
		}
	}

	e.logger.Info("Save restored", "save_id", save.ID, "properties", e.props.Len())
	return nil
}

// Snapshot fills save with the current properties and the given progress.
func (e *Engine) Snapshot(save *scenario.SaveData, step int) *scenario.SaveData {
	save.Step = step
	save.Properties = e.props.Iterate()
	return save
}
