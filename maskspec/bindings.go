package maskspec

import "sync"

// BindingTable maps declaration-file converter and transformer names to the
// host-provided bindings they reference.
type BindingTable struct {
	mu           sync.RWMutex
	converters   map[string]any
	transformers map[string]any
}

// NewBindingTable creates an empty binding table.
func NewBindingTable() *BindingTable {
	return &BindingTable{
		converters:   make(map[string]any),
		transformers: make(map[string]any),
	}
}

// RegisterConverter binds a converter under a declaration name.
func (b *BindingTable) RegisterConverter(name string, conv any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.converters[name] = conv
}

// RegisterTransform binds a transformer function under a declaration name.
func (b *BindingTable) RegisterTransform(name string, fn any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transformers[name] = fn
}

// Converter returns the converter bound to the name.
func (b *BindingTable) Converter(name string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.converters[name]

	return c, ok
}

// Transform returns the transformer bound to the name.
func (b *BindingTable) Transform(name string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.transformers[name]

	return t, ok
}
