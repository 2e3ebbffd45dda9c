package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexColumns(t *testing.T) {
	header := []string{"Name", " category", "price", "weekly_sales", "inventory_level", "abv"}
	index, missing := indexColumns(header)
	assert.Empty(t, missing)
	assert.Equal(t, 0, index["name"])
	assert.Equal(t, 1, index["category"])
	assert.Equal(t, 5, index["abv"])
}

func TestIndexColumns_ReportsMissing(t *testing.T) {
	_, missing := indexColumns([]string{"name", "price"})
	assert.ElementsMatch(t, []string{"category", "weekly_sales", "inventory_level"}, missing)
}

func TestParseProductRow(t *testing.T) {
	index, missing := indexColumns([]string{"name", "sku", "category", "price", "cost_price", "weekly_sales", "inventory_level", "abv", "shelf_life_days", "origin_country"})
	assert.Empty(t, missing)

	record := []string{"Session IPA", "IPA-001", "Beer", "£4.50", "2.10", "38", "120", "4.2", "90", "UK"}
	req, err := parseProductRow(record, index)
	assert.NoError(t, err)
	assert.Equal(t, "Session IPA", req.Name)
	assert.Equal(t, "beer", req.Category)
	assert.Equal(t, 4.5, req.Price)
	assert.Equal(t, 38.0, req.WeeklySales)
	assert.Equal(t, 120, req.InventoryLevel)
	if assert.NotNil(t, req.ABV) {
		assert.Equal(t, 4.2, *req.ABV)
	}
	if assert.NotNil(t, req.ShelfLifeDays) {
		assert.Equal(t, 90, *req.ShelfLifeDays)
	}
}

func TestParseProductRow_OptionalFieldsEmpty(t *testing.T) {
	index, _ := indexColumns([]string{"name", "category", "price", "weekly_sales", "inventory_level"})
	req, err := parseProductRow([]string{"House Red", "wine", "8.99", "12", "40"}, index)
	assert.NoError(t, err)
	assert.Nil(t, req.SKU)
	assert.Nil(t, req.CostPrice)
	assert.Nil(t, req.ABV)
	assert.Nil(t, req.ShelfLifeDays)
}

func TestParseProductRow_Rejections(t *testing.T) {
	index, _ := indexColumns([]string{"name", "category", "price", "weekly_sales", "inventory_level"})

	cases := []struct {
		label  string
		record []string
	}{
		{"missing name", []string{"", "beer", "4.50", "10", "50"}},
		{"unknown category", []string{"Mead", "mead", "9.00", "3", "20"}},
		{"zero price", []string{"Lager", "beer", "0", "10", "50"}},
		{"bad number", []string{"Lager", "beer", "cheap", "10", "50"}},
	}
	for _, c := range cases {
		_, err := parseProductRow(c.record, index)
		assert.Error(t, err, c.label)
	}
}
