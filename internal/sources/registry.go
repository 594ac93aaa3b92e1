package sources

import (
	"sort"

	"college-recommender/internal/models"
)

// Registry holds the configured source clients in fixed priority order.
// Priority is assigned at construction and never mutated afterwards, so a
// registry is safe for concurrent use.
type Registry struct {
	ordered []Client
}

type prioritized struct {
	client   Client
	priority int
}

// NewRegistry builds a registry from clients and their priorities. Lower
// priority values are consulted first; ties keep insertion order.
func NewRegistry() *RegistryBuilder {
	return &RegistryBuilder{}
}

type RegistryBuilder struct {
	entries []prioritized
}

func (b *RegistryBuilder) Add(client Client, priority int) *RegistryBuilder {
	b.entries = append(b.entries, prioritized{client: client, priority: priority})
	return b
}

func (b *RegistryBuilder) Build() *Registry {
	entries := make([]prioritized, len(b.entries))
	copy(entries, b.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})

	ordered := make([]Client, len(entries))
	for i, e := range entries {
		ordered[i] = e.client
	}
	return &Registry{ordered: ordered}
}

// ForField returns the clients covering a field type, in priority order.
func (r *Registry) ForField(ft models.FieldType) []Client {
	var clients []Client
	for _, c := range r.ordered {
		if c.Covers(ft) {
			clients = append(clients, c)
		}
	}
	return clients
}

// All returns every configured client in priority order.
func (r *Registry) All() []Client {
	return r.ordered
}

// Size returns the number of configured clients.
func (r *Registry) Size() int {
	return len(r.ordered)
}
