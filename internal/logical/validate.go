package logical

import (
	"fmt"
)

// IDColumnName is the name of the identifier column every entity receives.
const IDColumnName = "id"

// ValidationError describes the first problem found in a logical model.
type ValidationError struct {
	Domain string
	Entity string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Entity != "":
		return fmt.Sprintf("invalid logical model: entity %s.%s: %s", e.Domain, e.Entity, e.Reason)
	case e.Domain != "":
		return fmt.Sprintf("invalid logical model: domain %s: %s", e.Domain, e.Reason)
	default:
		return "invalid logical model: " + e.Reason
	}
}

// Validate checks names and relation targets of the whole model and returns
// the first problem found as a *ValidationError.
func Validate(m *Model) error {
	if m == nil {
		return &ValidationError{Reason: "model is nil"}
	}

	domains := make(map[string]bool, len(m.Domains))
	for _, d := range m.Domains {
		if d.Name == "" {
			return &ValidationError{Reason: "domain without a name"}
		}
		if domains[d.Name] {
			return &ValidationError{Domain: d.Name, Reason: "duplicate domain name"}
		}
		domains[d.Name] = true

		entities := make(map[string]bool, len(d.Entities))
		for _, e := range d.Entities {
			if e.Name == "" {
				return &ValidationError{Domain: d.Name, Reason: "entity without a name"}
			}
			if entities[e.Name] {
				return &ValidationError{Domain: d.Name, Entity: e.Name, Reason: "duplicate entity name"}
			}
			entities[e.Name] = true

			if err := validateEntity(m, d.Name, e); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateEntity(m *Model, domainName string, e Entity) error {
	fail := func(format string, args ...any) error {
		return &ValidationError{Domain: domainName, Entity: e.Name, Reason: fmt.Sprintf(format, args...)}
	}

	// Properties and relations share the table's column namespace.
	columns := map[string]string{IDColumnName: "identifier column"}

	for _, p := range e.Properties {
		if p.Name == "" {
			return fail("property without a name")
		}
		if p.DataType == "" {
			return fail("property %q has no datatype", p.Name)
		}
		if owner, ok := columns[p.Name]; ok {
			return fail("duplicate property %q (already used by %s)", p.Name, owner)
		}
		columns[p.Name] = "property " + p.Name
	}

	for _, r := range e.Relations {
		if r.Role == "" {
			return fail("relation without a role")
		}
		if r.DomainName == "" || r.EntityName == "" {
			return fail("relation %q has no target", r.Role)
		}

		col := r.ColumnName()
		if owner, ok := columns[col]; ok {
			return fail("relation %s to %s.%s produces column %q already used by %s",
				r.Role, r.DomainName, r.EntityName, col, owner)
		}
		columns[col] = "relation " + r.Role

		target, ok := m.Domain(r.DomainName)
		if !ok {
			return fail("relation %s references unknown domain %q", r.Role, r.DomainName)
		}
		if _, ok := target.Entity(r.EntityName); !ok {
			return fail("relation %s references unknown entity %s.%s", r.Role, r.DomainName, r.EntityName)
		}
	}

	return nil
}
