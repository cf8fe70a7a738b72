package logical

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordersModel() *Model {
	return &Model{
		Domains: []Domain{
			{
				Name: "orders",
				Entities: []Entity{
					{Name: "Customer", Properties: []Property{{Name: "address", DataType: "string"}}},
					{Name: "Product", Properties: []Property{{Name: "description", DataType: "string"}}},
					{
						Name: "Order",
						Properties: []Property{
							{Name: "orderTimestamp_utc", DataType: "timestamp"},
							{Name: "amount", DataType: "int"},
						},
						Relations: []Relation{
							{Role: "orderedBy", DomainName: "orders", EntityName: "Customer"},
							{Role: "orderFor", DomainName: "orders", EntityName: "Product"},
						},
					},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(m *Model)
		wantEntity string
		wantReason string
	}{
		{
			name:   "valid orders model",
			mutate: func(m *Model) {},
		},
		{
			name: "entity without properties or relations",
			mutate: func(m *Model) {
				m.Domains[0].Entities = append(m.Domains[0].Entities, Entity{Name: "Empty"})
			},
		},
		{
			name: "duplicate property",
			mutate: func(m *Model) {
				e := &m.Domains[0].Entities[2]
				e.Properties = append(e.Properties, Property{Name: "amount", DataType: "decimal"})
			},
			wantEntity: "Order",
			wantReason: `duplicate property "amount"`,
		},
		{
			name: "property shadows id column",
			mutate: func(m *Model) {
				e := &m.Domains[0].Entities[0]
				e.Properties = append(e.Properties, Property{Name: "id", DataType: "int"})
			},
			wantEntity: "Customer",
			wantReason: `duplicate property "id"`,
		},
		{
			name: "duplicate relation",
			mutate: func(m *Model) {
				e := &m.Domains[0].Entities[2]
				e.Relations = append(e.Relations, Relation{Role: "orderedBy", DomainName: "orders", EntityName: "Customer"})
			},
			wantEntity: "Order",
			wantReason: `produces column "orderedBy_Customer_id"`,
		},
		{
			name: "relation to unknown domain",
			mutate: func(m *Model) {
				m.Domains[0].Entities[2].Relations[0].DomainName = "crm"
			},
			wantEntity: "Order",
			wantReason: `unknown domain "crm"`,
		},
		{
			name: "relation to unknown entity",
			mutate: func(m *Model) {
				m.Domains[0].Entities[2].Relations[1].EntityName = "Article"
			},
			wantEntity: "Order",
			wantReason: "unknown entity orders.Article",
		},
		{
			name: "duplicate entity",
			mutate: func(m *Model) {
				m.Domains[0].Entities = append(m.Domains[0].Entities, Entity{Name: "Customer"})
			},
			wantEntity: "Customer",
			wantReason: "duplicate entity name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ordersModel()
			tt.mutate(m)

			err := Validate(m)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
			assert.Equal(t, tt.wantEntity, verr.Entity)
			assert.Contains(t, verr.Reason, tt.wantReason)
		})
	}
}

func TestValidateCrossDomainRelation(t *testing.T) {
	m := ordersModel()
	m.Domains = append(m.Domains, Domain{
		Name: "billing",
		Entities: []Entity{{
			Name:      "Invoice",
			Relations: []Relation{{Role: "billedFor", DomainName: "orders", EntityName: "Order"}},
		}},
	})

	assert.NoError(t, Validate(m))
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
}
