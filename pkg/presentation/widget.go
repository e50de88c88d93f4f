package presentation

import (
	"sort"
	"strings"
	"sync"

	"github.com/jwebster45206/stage-engine/pkg/scenario"
)

// Image is a named image view. Its brush may carry a material.
type Image struct {
	Name  string
	Brush Material
}

// DynamicMaterial returns the image's brush material if it is dynamic.
func (i *Image) DynamicMaterial() *DynamicMaterial {
	if i == nil {
		return nil
	}
	dm, _ := i.Brush.(*DynamicMaterial)
	return dm
}

// RetainerBox is a named effect container that renders its children through
// an effect material.
type RetainerBox struct {
	Name   string
	Effect Material

	invalid bool
}

// IsValid reports whether the box still refers to a live instance.
func (r *RetainerBox) IsValid() bool {
	return r != nil && !r.invalid
}

// Invalidate marks the box as no longer backed by a live instance.
func (r *RetainerBox) Invalidate() {
	r.invalid = true
}

// EffectMaterial returns the effect material, or nil for an invalid box.
func (r *RetainerBox) EffectMaterial() Material {
	if !r.IsValid() {
		return nil
	}
	return r.Effect
}

// Widget is the root of the on-screen tree and resolves targets by name.
type Widget struct {
	mu            sync.RWMutex
	images        map[string]*Image
	retainerBoxes map[string]*RetainerBox
}

func NewWidget() *Widget {
	return &Widget{
		images:        make(map[string]*Image),
		retainerBoxes: make(map[string]*RetainerBox),
	}
}

// NewWidgetFromStage builds a widget holding every target the stage declares.
func NewWidgetFromStage(stage scenario.Stage) *Widget {
	w := NewWidget()
	for _, spec := range stage.Images {
		w.AddImage(&Image{
			Name:  spec.Name,
			Brush: materialFromSpec(spec.Name, spec.Material),
		})
	}
	for _, spec := range stage.RetainerBoxes {
		box := &RetainerBox{
			Name:   spec.Name,
			Effect: materialFromSpec(spec.Name, spec.Effect),
		}
		if spec.Invalid {
			box.Invalidate()
		}
		w.AddRetainerBox(box)
	}
	return w
}

func materialFromSpec(owner, kind string) Material {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "dynamic":
		return NewDynamicMaterial("MID_" + owner)
	case "static":
		return &StaticMaterial{Name: "M_" + owner}
	default:
		return nil
	}
}

func (w *Widget) AddImage(img *Image) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.images[img.Name] = img
}

func (w *Widget) AddRetainerBox(box *RetainerBox) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.retainerBoxes[box.Name] = box
}

// TryFindImage looks up an image view by name.
func (w *Widget) TryFindImage(name string) (*Image, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	img, ok := w.images[name]
	return img, ok
}

// TryFindRetainerBox looks up an effect container by name. A box that has been
// invalidated is still found; callers must check IsValid.
func (w *Widget) TryFindRetainerBox(name string) (*RetainerBox, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	box, ok := w.retainerBoxes[name]
	return box, ok
}

// Images returns the image views sorted by name.
func (w *Widget) Images() []*Image {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Image, 0, len(w.images))
	for _, img := range w.images {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RetainerBoxes returns the effect containers sorted by name.
func (w *Widget) RetainerBoxes() []*RetainerBox {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*RetainerBox, 0, len(w.retainerBoxes))
	for _, box := range w.retainerBoxes {
		out = append(out, box)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
