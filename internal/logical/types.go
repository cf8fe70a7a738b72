// Package logical holds the storage-independent description of a business
// model: domains, the entities they contain, and the properties and relations
// of those entities.
package logical

// Model represents a complete logical model
type Model struct {
	Domains []Domain `yaml:"domains"`
}

// Domain groups related entities. Each domain becomes one physical schema.
type Domain struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`
}

// Entity represents a business entity with its attributes and references
type Entity struct {
	Name       string     `yaml:"name"`
	Properties []Property `yaml:"properties,omitempty"`
	Relations  []Relation `yaml:"relations,omitempty"`
}

// Property represents a scalar attribute of an entity
type Property struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"datatype"`
}

// Relation represents a reference from the owning entity to a target entity,
// possibly in another domain. Role tells apart several relations to the same
// target.
type Relation struct {
	Role       string `yaml:"role"`
	DomainName string `yaml:"domain"`
	EntityName string `yaml:"entity"`
}

// ColumnName returns the name of the foreign-key column the relation turns into.
func (r Relation) ColumnName() string {
	return r.Role + "_" + r.EntityName + "_id"
}

// Domain returns the domain with the given name.
func (m *Model) Domain(name string) (*Domain, bool) {
	for i := range m.Domains {
		if m.Domains[i].Name == name {
			return &m.Domains[i], true
		}
	}
	return nil, false
}

// Entity returns the entity with the given name.
func (d *Domain) Entity(name string) (*Entity, bool) {
	for i := range d.Entities {
		if d.Entities[i].Name == name {
			return &d.Entities[i], true
		}
	}
	return nil, false
}
