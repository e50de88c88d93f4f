package presentation

import "sync"

// Material is anything that can be assigned as an image brush or an effect.
type Material interface {
	MaterialName() string
}

// StaticMaterial is a shared material whose parameters cannot change at runtime.
type StaticMaterial struct {
	Name string
}

func (m *StaticMaterial) MaterialName() string { return m.Name }

// DynamicMaterial is a per-instance material with runtime-settable texture
// parameters.
type DynamicMaterial struct {
	Name string

	mu       sync.RWMutex
	textures map[string]*Texture
}

func NewDynamicMaterial(name string) *DynamicMaterial {
	return &DynamicMaterial{
		Name:     name,
		textures: make(map[string]*Texture),
	}
}

func (m *DynamicMaterial) MaterialName() string { return m.Name }

// SetTextureParameter binds tex to the named parameter.
func (m *DynamicMaterial) SetTextureParameter(parameter string, tex *Texture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.textures == nil {
		m.textures = make(map[string]*Texture)
	}
	m.textures[parameter] = tex
}

// TextureParameter returns the texture currently bound to parameter.
func (m *DynamicMaterial) TextureParameter(parameter string) (*Texture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.textures[parameter]
	return tex, ok
}

// TextureParameters returns a copy of all bound parameters.
func (m *DynamicMaterial) TextureParameters() map[string]*Texture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Texture, len(m.textures))
	for k, v := range m.textures {
		out[k] = v
	}
	return out
}
