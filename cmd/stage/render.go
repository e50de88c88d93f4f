package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/stage-engine/pkg/presentation"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	targetStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func renderOK(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, a...)))
}

func renderError(w io.Writer, err error) {
	fmt.Fprintln(w, errStyle.Render(err.Error()))
}

// renderStage prints every target and the textures bound to its material.
func renderStage(w io.Writer, widget *presentation.Widget) {
	fmt.Fprintln(w, headerStyle.Render("Stage"))

	for _, img := range widget.Images() {
		fmt.Fprintf(w, "  %s %s\n", targetStyle.Render("Image "+img.Name), materialSummary(img.DynamicMaterial(), img.Brush))
	}
	for _, box := range widget.RetainerBoxes() {
		var dm *presentation.DynamicMaterial
		if m, ok := box.EffectMaterial().(*presentation.DynamicMaterial); ok {
			dm = m
		}
		label := targetStyle.Render("RetainerBox " + box.Name)
		if !box.IsValid() {
			fmt.Fprintf(w, "  %s %s\n", label, dimStyle.Render("(invalid)"))
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", label, materialSummary(dm, box.Effect))
	}
}

func materialSummary(dm *presentation.DynamicMaterial, m presentation.Material) string {
	if dm == nil {
		if m == nil {
			return dimStyle.Render("(no material)")
		}
		return dimStyle.Render("(static " + m.MaterialName() + ")")
	}

	params := dm.TextureParameters()
	if len(params) == 0 {
		return dimStyle.Render("(no parameters set)")
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+params[name].Path)
	}
	return strings.Join(parts, " ")
}
