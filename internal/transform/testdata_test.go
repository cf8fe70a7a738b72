package transform

import (
	"github.com/tordrt/dwhgen/internal/logical"
)

func ordersLogicalModel() *logical.Model {
	return &logical.Model{
		Domains: []logical.Domain{
			{
				Name: "orders",
				Entities: []logical.Entity{
					{Name: "Customer", Properties: []logical.Property{{Name: "address", DataType: "string"}}},
					{Name: "Product", Properties: []logical.Property{{Name: "description", DataType: "string"}}},
					{
						Name: "Order",
						Properties: []logical.Property{
							{Name: "orderTimestamp_utc", DataType: "timestamp"},
							{Name: "amount", DataType: "int"},
						},
						Relations: []logical.Relation{
							{Role: "orderedBy", DomainName: "orders", EntityName: "Customer"},
							{Role: "orderFor", DomainName: "orders", EntityName: "Product"},
						},
					},
				},
			},
		},
	}
}
