package catalogs

import "slices"

// Equipment is a piece of gear referenced by exercises.
type Equipment struct {
	ID       string   `json:"id" yaml:"id"` // Slug of the canonical name
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Aliases  []string `json:"aliases" yaml:"aliases"`
}

// Clone returns a deep copy of the equipment record.
func (e *Equipment) Clone() *Equipment {
	if e == nil {
		return nil
	}
	c := *e
	c.Aliases = cloneList(e.Aliases)
	return &c
}

// Matches reports whether key names this equipment by name or alias.
// key must already be normalized.
func (e *Equipment) Matches(key string) bool {
	return e.ID == key || e.Name == key || slices.Contains(e.Aliases, key)
}
