package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/dwhgen/internal/mapping"
	"github.com/tordrt/dwhgen/internal/schema"
)

func ordersPhysicalModel(t *testing.T) *schema.Model {
	t.Helper()
	m, err := LogicalToPhysical(ordersLogicalModel())
	require.NoError(t, err)
	return m
}

// compositeKeyModel has a table keyed by two columns, one of them declared
// nullable in the source.
func compositeKeyModel() *schema.Model {
	return &schema.Model{Schemas: []*schema.Schema{{
		Name: "sales",
		Tables: []*schema.Table{{
			Name: "OrderLine",
			Columns: []*schema.Column{
				{Name: "quantity", DataType: "int", Nullable: false},
				{Name: "order_id", DataType: "int", Nullable: false},
				{Name: "line_no", DataType: "smallint", Nullable: true},
				{Name: "price", DataType: "decimal", Nullable: false, Length: schema.Int(10), Scale: schema.Int(2)},
			},
			PrimaryKey: schema.PrimaryKeyConstraint{Name: "pk_OrderLine", ColumnNames: []string{"order_id", "line_no"}},
		}},
	}}}
}

func TestSourceToStagingOrders(t *testing.T) {
	src := ordersPhysicalModel(t)

	res, err := SourceToStaging(src)
	require.NoError(t, err)
	require.Same(t, res.Model, res.Mapping.Target)
	require.Same(t, src, res.Mapping.Source)

	stg := res.Model.Schema("orders_stg")
	require.NotNil(t, stg)

	order := stg.Table("Order")
	require.NotNil(t, order)
	assert.Equal(t,
		[]string{"stg_timestamp_utc", "stg_runId", "id", "orderTimestamp_utc", "amount", "orderedBy_Customer_id", "orderFor_Product_id"},
		order.ColumnNames())
	assert.Equal(t, schema.PrimaryKeyConstraint{Name: "pk_Order", ColumnNames: []string{"stg_runId", "id"}}, order.PrimaryKey)
	assert.Empty(t, order.ForeignKeys)

	assert.Equal(t, "datetime2 NOT NULL", order.Column("stg_timestamp_utc").FullType())
	assert.Equal(t, "uniqueidentifier NOT NULL", order.Column("stg_runId").FullType())
	assert.Equal(t, "uniqueidentifier NOT NULL", order.Column("id").FullType())
	// Relation columns are NOT NULL in the source but not part of the key.
	assert.Equal(t, "uniqueidentifier NULL", order.Column("orderedBy_Customer_id").FullType())

	assert.NoError(t, res.Model.Validate())
	assert.NoError(t, res.Mapping.Validate())
}

func TestSourceToStagingMapping(t *testing.T) {
	src := ordersPhysicalModel(t)
	res, err := SourceToStaging(src)
	require.NoError(t, err)

	tm := res.Mapping.SchemaMappings[0].TableMappings[2]
	require.Equal(t, "Order", tm.Target.Name)
	assert.Same(t, src.Schemas[0].Tables[2], tm.Source)
	assert.Empty(t, tm.LoadSteps)
	require.Len(t, tm.ColumnMappings, len(tm.Target.Columns))

	assert.True(t, tm.ColumnMappings[0].IsSynthetic())
	assert.Equal(t, ParamTimestampUTC, tm.ColumnMappings[0].Expression())
	assert.True(t, tm.ColumnMappings[1].IsSynthetic())
	assert.Equal(t, ParamRunID, tm.ColumnMappings[1].Expression())

	for i, cm := range tm.ColumnMappings[2:] {
		assert.Same(t, tm.Target.Columns[i+2], cm.Target)
		assert.Same(t, tm.Source.Columns[i], cm.SourceColumn())
		assert.Empty(t, cm.Expression())
	}
}

func TestSourceToStagingLaws(t *testing.T) {
	for _, src := range []*schema.Model{ordersPhysicalModel(t), compositeKeyModel()} {
		res, err := SourceToStaging(src)
		require.NoError(t, err)

		for i, s := range src.Schemas {
			sm := res.Mapping.SchemaMappings[i]
			assert.Equal(t, s.Name+"_stg", sm.Target.Name)

			for j, table := range s.Tables {
				target := sm.TableMappings[j].Target
				assert.Len(t, target.Columns, len(table.Columns)+2)
				assert.Equal(t, append([]string{"stg_runId"}, table.PrimaryKey.ColumnNames...), target.PrimaryKey.ColumnNames)

				for _, c := range target.Columns[2:] {
					assert.Equal(t, !table.IsPrimaryKeyColumn(c.Name), c.Nullable, "column %s.%s", table.Name, c.Name)
				}
			}
		}
	}
}

func TestSourceToStagingCopiesTypeParameters(t *testing.T) {
	src := compositeKeyModel()
	res, err := SourceToStaging(src)
	require.NoError(t, err)

	price := res.Model.Schemas[0].Tables[0].Column("price")
	assert.Equal(t, "decimal(10,2) NULL", price.FullType())
	assert.NotSame(t, src.Schemas[0].Tables[0].Column("price").Length, price.Length)

	lineNo := res.Model.Schemas[0].Tables[0].Column("line_no")
	assert.False(t, lineNo.Nullable)
}

func TestSourceToStagingDoesNotModifySource(t *testing.T) {
	src := ordersPhysicalModel(t)
	before := ordersPhysicalModel(t)

	_, err := SourceToStaging(src)
	require.NoError(t, err)
	assert.Equal(t, before, src)
}

func TestSourceToStagingRejectsDanglingPrimaryKey(t *testing.T) {
	src := compositeKeyModel()
	src.Schemas[0].Tables[0].PrimaryKey.ColumnNames = []string{"order_id", "line"}

	res, err := SourceToStaging(src)
	assert.Nil(t, res)

	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "OrderLine", verr.Table)
}

func TestStagingStepsPresentFlatMapping(t *testing.T) {
	res, err := SourceToStaging(compositeKeyModel())
	require.NoError(t, err)

	tm := res.Mapping.SchemaMappings[0].TableMappings[0]
	steps := tm.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, mapping.StepInsert, steps[0].Kind)
	assert.Len(t, steps[0].SourceMappings(), 4)
}

func TestDerivedTransformsRejectTechnicalColumnClash(t *testing.T) {
	source := func(column string) *schema.Model {
		return &schema.Model{Schemas: []*schema.Schema{{
			Name: "shop",
			Tables: []*schema.Table{{
				Name: "orders",
				Columns: []*schema.Column{
					{Name: "id", DataType: "int"},
					{Name: column, DataType: "int", Nullable: true},
				},
				PrimaryKey: schema.PrimaryKeyConstraint{Name: "pk_orders", ColumnNames: []string{"id"}},
			}},
		}}}
	}

	tests := []struct {
		name      string
		column    string
		transform func(*schema.Model) (*Result, error)
		wantErr   bool
	}{
		{"staging timestamp", StagingTimestampUTC, SourceToStaging, true},
		{"staging run id", StagingRunID, SourceToStaging, true},
		{"hda valid from", HDAValidFromUTC, SourceToHDA, true},
		{"hda voided", HDAVoided, SourceToHDA, true},
		{"staging column into hda", StagingRunID, SourceToHDA, false},
		{"hda column into staging", HDAVoided, SourceToStaging, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.transform(source(tt.column))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.NoError(t, res.Model.Validate())
				return
			}

			assert.Nil(t, res)
			var verr *schema.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "shop", verr.Schema)
			assert.Equal(t, "orders", verr.Table)
			assert.Contains(t, verr.Reason, tt.column)
		})
	}
}
