package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/stage-engine/pkg/command"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/spf13/cobra"
)

// appFactory is replaced in tests.
var appFactory = openApp

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := appFactory(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error("Error closing storage", "error", err)
		}
	}()
	return fn(ctx, a)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "stage",
		Short:         "Run, preview and restore scripted stage commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCommand(),
		newPreviewCommand(),
		newRestoreCommand(),
		newSavesCommand(),
		newDeleteCommand(),
		newValidateCommand(),
	)
	return root
}

func newRunCommand() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:     "run <script>",
		Short:   "Execute a script and save the resulting scenario properties",
		Example: `stage run intro.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				save, widget, err := a.runScript(ctx, args[0], !noSave)
				if widget != nil {
					renderStage(a.out, widget)
				}
				if err != nil {
					return err
				}
				if noSave {
					renderOK(a.out, "Executed %d commands", save.Step)
				} else {
					renderOK(a.out, "Executed %d commands, saved as %s", save.Step, save.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write a save slot")
	return cmd
}

func newPreviewCommand() *cobra.Command {
	var (
		step        int
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "preview <script>",
		Short: "Preview a script up to a step without recording anything",
		Example: `stage preview intro.json --step 2
stage preview intro.json --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if interactive {
					script, err := a.store.GetScript(ctx, args[0])
					if err != nil {
						return err
					}
					p := tea.NewProgram(newStepper(a, script, step),
						tea.WithContext(ctx),
						tea.WithInput(cmd.InOrStdin()),
						tea.WithOutput(a.out),
						tea.WithAltScreen())
					_, err = p.Run()
					return err
				}

				widget, err := a.previewScript(ctx, args[0], step)
				if widget != nil {
					renderStage(a.out, widget)
				}
				if err != nil {
					return err
				}
				renderOK(a.out, "Preview complete")
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&step, "step", -1, "last step to preview (default: final step)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "step through the preview with the arrow keys")
	return cmd
}

func newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <save-id>",
		Short: "Restore a stage from a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid save ID %q: %w", args[0], err)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				save, widget, err := a.restoreGame(ctx, id)
				if widget != nil {
					renderStage(a.out, widget)
				}
				if err != nil {
					return err
				}
				renderOK(a.out, "Restored %d properties from %s (step %d)", len(save.Properties), save.Script, save.Step)
				return nil
			})
		},
	}
}

func newSavesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "saves",
		Short: "List save slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				ids, err := a.store.ListGames(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(a.out, id.String())
				}
				return nil
			})
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <save-id>",
		Short: "Delete a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid save ID %q: %w", args[0], err)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.store.DeleteGame(ctx, id); err != nil {
					return err
				}
				renderOK(a.out, "Deleted %s", id)
				return nil
			})
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <script-file>",
		Short: "Check that a script only uses known commands and targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(cmd.OutOrStdout(), args[0], command.DefaultRegistry())
		},
	}
}

func validateFile(w io.Writer, filename string, registry *command.Registry) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	script, err := scenario.ParseScript(filename, data)
	if err != nil {
		return err
	}

	if problems := validateScript(script, registry); len(problems) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(problems, "\n"))
	}
	renderOK(w, "Script %s is valid", filename)
	return nil
}

func validateScript(script *scenario.Script, registry *command.Registry) []string {
	var problems []string
	for i, rec := range script.Commands {
		if _, ok := registry.Lookup(rec.Name); !ok {
			problems = append(problems, fmt.Sprintf("  - step %d: unknown command %q", i, rec.Name))
			continue
		}
		if rec.Name == command.ChangeTextureParameterName {
			target := rec.GetArg(command.ArgTarget)
			if command.ParseTargetKind(target) == command.TargetUnknown {
				problems = append(problems, fmt.Sprintf("  - step %d: unsupported target %q", i, target))
			}
			if rec.GetArg(command.ArgTargetName) == "" {
				problems = append(problems, fmt.Sprintf("  - step %d: missing %s", i, command.ArgTargetName))
			}
		}
	}
	return problems
}
