package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/dwhgen/internal/logical"
	"github.com/tordrt/dwhgen/internal/schema"
	"github.com/tordrt/dwhgen/internal/transform"
)

var testHeader = Header{
	GeneratedAt:  time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
	GenerationID: "00000000-0000-0000-0000-000000000001",
}

func ordersModel(t *testing.T) *schema.Model {
	t.Helper()

	m := &logical.Model{
		Domains: []logical.Domain{
			{
				Name: "orders",
				Entities: []logical.Entity{
					{Name: "Customer", Properties: []logical.Property{{Name: "address", DataType: "string"}}},
					{
						Name:       "Order",
						Properties: []logical.Property{{Name: "amount", DataType: "int"}},
						Relations:  []logical.Relation{{Role: "orderedBy", DomainName: "orders", EntityName: "Customer"}},
					},
				},
			},
		},
	}

	physical, err := transform.LogicalToPhysical(m)
	require.NoError(t, err)
	return physical
}

func TestRenderDDL(t *testing.T) {
	out, err := New().Render(TemplateDDL, ModelContext(testHeader, ordersModel(t)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "-- This file was automatically generated by dwhgen @ 2024-03-01T12:30:00Z"))
	assert.Contains(t, out, testHeader.GenerationID)
	assert.Contains(t, out, "EXEC('CREATE SCHEMA [orders]');")
	assert.Contains(t, out, "CREATE TABLE [orders].[Customer] (")
	assert.Contains(t, out, "      [id] uniqueidentifier NOT NULL\n")
	assert.Contains(t, out, "    , [address] nvarchar(255) NULL\n")
	assert.Contains(t, out, "    , [orderedBy_Customer_id] uniqueidentifier NOT NULL\n")
	assert.Contains(t, out, "    , CONSTRAINT [pk_Order] PRIMARY KEY ([id])")
	assert.Contains(t, out, "ALTER TABLE [orders].[Order] ADD CONSTRAINT [fk_orderedBy_Customer]")
	assert.Contains(t, out, "FOREIGN KEY ([orderedBy_Customer_id]) REFERENCES [orders].[Customer] ([id]);")
	assert.True(t, strings.HasSuffix(out, "GO\n"))

	// Foreign keys come after every table so that forward references resolve.
	assert.Less(t, strings.Index(out, "CREATE TABLE [orders].[Order]"), strings.Index(out, "ALTER TABLE"))
}

func TestRenderDDLEmptyModel(t *testing.T) {
	out, err := New().Render(TemplateDDL, ModelContext(testHeader, &schema.Model{}))
	require.NoError(t, err)
	assert.NotContains(t, out, "CREATE TABLE")
}

func TestRenderStagingETL(t *testing.T) {
	res, err := transform.SourceToStaging(ordersModel(t))
	require.NoError(t, err)

	out, err := New().Render(TemplateStagingETL, MappingContext(testHeader, res.Mapping))
	require.NoError(t, err)

	assert.Contains(t, out, "CREATE OR ALTER PROCEDURE [orders_stg].[load_Order]")
	assert.Contains(t, out, "@runId uniqueidentifier,")
	assert.Contains(t, out, "INSERT INTO [orders_stg].[Order] (")
	assert.Contains(t, out, "          [stg_timestamp_utc]\n        , [stg_runId]\n")
	assert.Contains(t, out, "          @timestamp_utc\n        , @runId\n        , [src].[id]\n")
	assert.Contains(t, out, "FROM [orders].[Order] AS [src];")
	assert.Equal(t, 2, strings.Count(out, "CREATE OR ALTER PROCEDURE"))
}

func TestRenderHDAETL(t *testing.T) {
	res, err := transform.SourceToHDA(ordersModel(t))
	require.NoError(t, err)

	out, err := New().Render(TemplateHDAETL, MappingContext(testHeader, res.Mapping))
	require.NoError(t, err)

	assert.Contains(t, out, "CREATE OR ALTER PROCEDURE [orders_hda].[load_Customer]")
	assert.Contains(t, out, "-- Insert new and changed rows")
	assert.Contains(t, out, "-- Insert void markers for deleted rows")
	assert.Contains(t, out, "PARTITION BY [h].[id] ORDER BY [h].[hda_validFrom_utc] DESC")
	assert.Contains(t, out, "WHERE [versions].[rn] = 1 AND [versions].[hda_voided] = 0")
	assert.Contains(t, out, "SELECT [id], [address]\n        FROM [orders].[Customer]\n        EXCEPT")
	assert.Contains(t, out, "WHERE [src].[id] = [cur].[id]")
	assert.Contains(t, out, "        , 1\n        , [x].[id]\n    FROM [changed] AS [x];")

	// Changes are loaded before deletes within each procedure.
	changes := strings.Index(out, "-- Insert new and changed rows")
	deletes := strings.Index(out, "-- Insert void markers for deleted rows")
	assert.Less(t, changes, deletes)
}

func TestRenderHDAPointInTime(t *testing.T) {
	res, err := transform.SourceToHDA(ordersModel(t))
	require.NoError(t, err)

	out, err := New().Render(TemplateHDAPIT, MappingContext(testHeader, res.Mapping))
	require.NoError(t, err)

	assert.Contains(t, out, "CREATE OR ALTER FUNCTION [orders_hda].[Order_pit] (@pointInTime_utc datetime2)")
	assert.Contains(t, out, "WHERE [h].[hda_validFrom_utc] <= @pointInTime_utc")
	assert.NotContains(t, out, "[v].[hda_voided]\n")
	assert.Equal(t, 2, strings.Count(out, "RETURNS TABLE"))
}

func TestRenderLineage(t *testing.T) {
	res, err := transform.SourceToHDA(ordersModel(t))
	require.NoError(t, err)

	out, err := New().Render(TemplateLineage, MappingContext(testHeader, res.Mapping))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!-- This file was automatically generated by dwhgen"))
	assert.Contains(t, out, "## orders -> orders_hda")
	assert.Contains(t, out, "### orders_hda.Order")
	assert.Contains(t, out, "| hda_validFrom_utc | `@timestamp_utc` |")
	assert.Contains(t, out, "| orderedBy_Customer_id | orders.Order.orderedBy_Customer_id |")
	assert.Contains(t, out, "(`insert-deletes`)")
}

func TestRenderTemplateNotFound(t *testing.T) {
	_, err := New().Render("missing.sql", ModelContext(testHeader, &schema.Model{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestRenderOverrides(t *testing.T) {
	dir := t.TempDir()
	override := "{{template \"sql-header\" .Header}}\n{{range .Schemas}}-- schema {{.Name}}\n{{end}}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ddl.sql.tmpl"), []byte(override), 0o644))

	r, err := NewWithOverrides(dir)
	require.NoError(t, err)

	out, err := r.Render(TemplateDDL, ModelContext(testHeader, ordersModel(t)))
	require.NoError(t, err)
	assert.Contains(t, out, "-- schema orders\n")
	assert.NotContains(t, out, "CREATE TABLE")

	// Templates without an override still come from the embedded set.
	res, err := transform.SourceToStaging(ordersModel(t))
	require.NoError(t, err)
	out, err = r.Render(TemplateStagingETL, MappingContext(testHeader, res.Mapping))
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE OR ALTER PROCEDURE")
}

func TestNewWithOverridesMissingDir(t *testing.T) {
	_, err := NewWithOverrides(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRenderBadTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ddl.sql.tmpl"), []byte("{{range .Schemas}"), 0o644))

	r, err := NewWithOverrides(dir)
	require.NoError(t, err)

	_, err = r.Render(TemplateDDL, ModelContext(testHeader, &schema.Model{}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTemplateNotFound))
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestFuncs(t *testing.T) {
	assert.Equal(t, "[orders].[Order]", quote("orders", "Order"))
	assert.Equal(t, "[shop].[odd]]name]", quote("shop", "odd]name"))
	assert.Equal(t, "[[x]]]", quote("[x]"))
	assert.Equal(t, "[a]]b]", quoteColumns([]string{"a]b"}))
	assert.Equal(t, "[a], [b]", quoteColumns([]string{"a", "b"}))
	assert.Equal(t, "[x].[a], [x].[b]", quoteAliased("x", []string{"a", "b"}))
	assert.Equal(t, "[l].[a] = [r].[a] AND [l].[b] = [r].[b]", joinOn("l", "r", []string{"a", "b"}))
	assert.Equal(t, "  ", separator(0))
	assert.Equal(t, ", ", separator(3))
}

func TestNewHeader(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	h := NewHeader(now)
	assert.Equal(t, "2024-01-02T02:04:05Z", h.Timestamp())
	assert.Len(t, h.GenerationID, 36)
	assert.NotEqual(t, h.GenerationID, NewHeader(now).GenerationID)
}
