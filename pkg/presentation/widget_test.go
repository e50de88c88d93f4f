package presentation

import (
	"testing"

	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWidgetFromStage(t *testing.T) {
	w := NewWidgetFromStage(scenario.Stage{
		Images: []scenario.ImageSpec{
			{Name: "Portrait", Material: "dynamic"},
			{Name: "Background", Material: "static"},
			{Name: "Plain"},
		},
		RetainerBoxes: []scenario.RetainerBoxSpec{
			{Name: "Blur", Effect: "Dynamic"},
			{Name: "Gone", Effect: "dynamic", Invalid: true},
		},
	})

	portrait, ok := w.TryFindImage("Portrait")
	require.True(t, ok)
	assert.NotNil(t, portrait.DynamicMaterial())

	bg, ok := w.TryFindImage("Background")
	require.True(t, ok)
	assert.Nil(t, bg.DynamicMaterial())

	plain, ok := w.TryFindImage("Plain")
	require.True(t, ok)
	assert.Nil(t, plain.DynamicMaterial())

	blur, ok := w.TryFindRetainerBox("Blur")
	require.True(t, ok)
	assert.True(t, blur.IsValid())
	_, isDynamic := blur.EffectMaterial().(*DynamicMaterial)
	assert.True(t, isDynamic)

	gone, ok := w.TryFindRetainerBox("Gone")
	require.True(t, ok)
	assert.False(t, gone.IsValid())
	assert.Nil(t, gone.EffectMaterial())

	_, ok = w.TryFindImage("Missing")
	assert.False(t, ok)

	assert.Len(t, w.Images(), 3)
	assert.Equal(t, "Background", w.Images()[0].Name)
	assert.Len(t, w.RetainerBoxes(), 2)
}

func TestNilRetainerBoxIsInvalid(t *testing.T) {
	var box *RetainerBox
	assert.False(t, box.IsValid())
	assert.Nil(t, box.EffectMaterial())
}

func TestDynamicMaterial_TextureParameters(t *testing.T) {
	m := NewDynamicMaterial("MID_Portrait")
	face := &Texture{Path: "/Game/T_Face"}

	m.SetTextureParameter("BaseColor", face)
	got, ok := m.TextureParameter("BaseColor")
	require.True(t, ok)
	assert.Same(t, face, got)

	m.SetTextureParameter("BaseColor", ClearTexture)
	got, _ = m.TextureParameter("BaseColor")
	assert.Same(t, ClearTexture, got)

	params := m.TextureParameters()
	delete(params, "BaseColor")
	_, ok = m.TextureParameter("BaseColor")
	assert.True(t, ok, "TextureParameters must return a copy")
}
