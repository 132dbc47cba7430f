package cmd

import (
	"bytes"
	"testing"

	"github.com/chrisdamba/foodstore/internal/storefront"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"carrot-cake:2", "coffee"})
	require.NoError(t, err)
	assert.Equal(t, []storefront.LineRequest{
		{ProductID: "carrot-cake", Quantity: 2},
		{ProductID: "coffee", Quantity: 1},
	}, items)

	_, err = parseItems([]string{":2"})
	assert.Error(t, err)
	_, err = parseItems([]string{"coffee:two"})
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	v := map[string]any{"total": decimal.RequireFromString("12.50"), "valid": true}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, "yaml", v))
	assert.Equal(t, "total: \"12.5\"\nvalid: true\n", buf.String())

	buf.Reset()
	require.NoError(t, render(&buf, "json", v))
	assert.JSONEq(t, `{"total": "12.5", "valid": true}`, buf.String())

	assert.Error(t, render(&buf, "toml", v))
}
