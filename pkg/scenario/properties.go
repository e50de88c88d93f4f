package scenario

import "sync"

// Property is one recorded scenario property: the last value a command
// published under an encoded key within its namespace.
type Property struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Key       string `json:"key" yaml:"key"`
	Value     string `json:"value" yaml:"value"`
}

// Properties is the scenario property store for one play session.
// Entries are partitioned by namespace (the command name), and keep the order
// in which their key was first registered.
type Properties struct {
	mu      sync.RWMutex
	entries []Property
	index   map[string]int
}

// NewProperties creates a store seeded with the given entries. Later
// duplicates of a namespace/key pair overwrite earlier ones.
func NewProperties(seed ...Property) *Properties {
	p := &Properties{index: make(map[string]int)}
	for _, prop := range seed {
		p.Register(prop.Namespace, prop.Key, prop.Value)
	}
	return p
}

func indexKey(namespace, key string) string {
	// NUL cannot appear in either part when they come from authored data.
	return namespace + "\x00" + key
}

// Register records value under key in namespace, replacing any previous value.
func (p *Properties) Register(namespace, key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index == nil {
		p.index = make(map[string]int)
	}
	ik := indexKey(namespace, key)
	if i, ok := p.index[ik]; ok {
		p.entries[i].Value = value
		return
	}
	p.index[ik] = len(p.entries)
	p.entries = append(p.entries, Property{Namespace: namespace, Key: key, Value: value})
}

// Get returns the value stored under key in namespace.
func (p *Properties) Get(namespace, key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.index[indexKey(namespace, key)]
	if !ok {
		return "", false
	}
	return p.entries[i].Value, true
}

// Iterate returns a snapshot of every entry across all namespaces.
func (p *Properties) Iterate() []Property {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Property, len(p.entries))
	copy(out, p.entries)
	return out
}

// Namespace returns a snapshot of the entries registered under namespace.
func (p *Properties) Namespace(namespace string) []Property {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Property
	for _, e := range p.entries {
		if e.Namespace == namespace {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of stored entries.
func (p *Properties) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
