// Package presentation holds the live, mutable objects that scripted commands
// act upon: image views, effect containers, their materials and the assets
// bound to material parameters.
package presentation

// Asset is any resource the asset resolver can hand back.
type Asset interface {
	AssetPath() string
}

// Texture is an image resource that can be bound to a material parameter.
type Texture struct {
	Path string
	MIME string
	Size int
}

func (t *Texture) AssetPath() string { return t.Path }

// Blob is a loaded resource that is not a texture (audio, text, ...).
type Blob struct {
	Path string
	MIME string
	Size int
}

func (b *Blob) AssetPath() string { return b.Path }

// ClearTexture is bound when a command asks for a parameter to be cleared.
var ClearTexture = &Texture{Path: "None"}
