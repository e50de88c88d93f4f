package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/muesli/reflow/wordwrap"
)

// header, command line, error line and key help
const stepperChrome = 4

// stepper is the interactive preview. Every step change previews the script
// from the start on a fresh stage, with the selected step as the current one.
type stepper struct {
	app    *app
	script *scenario.Script
	step   int

	viewport viewport.Model
	width    int
	stage    string
	err      error
}

func newStepper(a *app, script *scenario.Script, step int) stepper {
	last := len(script.Commands) - 1
	if step < 0 || step > last {
		step = last
	}

	m := stepper{
		app:      a,
		script:   script,
		step:     step,
		viewport: viewport.New(80, 20),
		width:    80,
	}
	m.refresh()
	return m
}

// refresh re-runs the preview for the current step.
func (m *stepper) refresh() {
	if len(m.script.Commands) == 0 {
		m.stage = dimStyle.Render("(script has no commands)")
		m.err = nil
		m.wrap()
		return
	}

	eng, widget := m.app.stage(m.script)
	m.err = eng.Preview(m.script, m.step)

	var b strings.Builder
	renderStage(&b, widget)
	m.stage = b.String()
	m.wrap()
}

func (m *stepper) wrap() {
	m.viewport.SetContent(wordwrap.String(m.stage, m.viewport.Width))
	m.viewport.GotoTop()
}

func (m stepper) Init() tea.Cmd {
	return nil
}

func (m stepper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-stepperChrome, 1)
		m.wrap()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyLeft:
			if m.step > 0 {
				m.step--
				m.refresh()
			}
			return m, nil
		case tea.KeyRight:
			if m.step < len(m.script.Commands)-1 {
				m.step++
				m.refresh()
			}
			return m, nil
		case tea.KeyHome:
			if m.step > 0 {
				m.step = 0
				m.refresh()
			}
			return m, nil
		case tea.KeyEnd:
			if last := len(m.script.Commands) - 1; m.step < last {
				m.step = last
				m.refresh()
			}
			return m, nil
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m stepper) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s  step %d/%d", m.script.Name, m.step+1, len(m.script.Commands))
	b.WriteString(headerStyle.Render(title) + "\n")
	if m.step >= 0 && m.step < len(m.script.Commands) {
		b.WriteString(dimStyle.Render(wordwrap.String(describeRecord(m.script.Commands[m.step]), m.width)) + "\n")
	}

	b.WriteString(m.viewport.View() + "\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(wordwrap.String(m.err.Error(), m.width)) + "\n")
	}
	b.WriteString(dimStyle.Render("left/right step  home/end jump  q quit"))
	return b.String()
}

// describeRecord formats a command as "Name Arg=Value ..." with sorted args.
func describeRecord(rec scenario.Command) string {
	keys := make([]string, 0, len(rec.Args))
	for k := range rec.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{rec.Name}
	for _, k := range keys {
		parts = append(parts, k+"="+rec.Args[k])
	}
	return strings.Join(parts, " ")
}
