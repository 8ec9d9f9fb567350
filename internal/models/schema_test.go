package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFields(t *testing.T) {
	valid := map[string]any{
		"type":    "substation",
		"address": "Mekelle",
		"voltage": 33.0,
	}

	t.Run("accepts a complete submission", func(t *testing.T) {
		assert.Empty(t, ValidateFields(valid))
	})

	t.Run("rejects empty type", func(t *testing.T) {
		f := map[string]any{"type": "   ", "address": "Mekelle", "voltage": 33.0}
		errs := ValidateFields(f)
		require.Contains(t, errs, "type")
		assert.Equal(t, "Type is required.", errs["type"])
	})

	t.Run("rejects missing address", func(t *testing.T) {
		f := map[string]any{"type": "substation", "voltage": 33.0}
		assert.Contains(t, ValidateFields(f), "address")
	})

	t.Run("rejects zero voltage", func(t *testing.T) {
		f := map[string]any{"type": "substation", "address": "Mekelle", "voltage": 0.0}
		errs := ValidateFields(f)
		require.Contains(t, errs, "voltage")
		assert.Equal(t, "Voltage is required.", errs["voltage"])
	})

	t.Run("accepts voltage submitted as a numeric string", func(t *testing.T) {
		f := map[string]any{"type": "substation", "address": "Mekelle", "voltage": "33"}
		assert.Empty(t, ValidateFields(f))
	})

	t.Run("rejects voltage string zero", func(t *testing.T) {
		f := map[string]any{"type": "substation", "address": "Mekelle", "voltage": "0"}
		assert.Contains(t, ValidateFields(f), "voltage")
	})

	t.Run("optional fields never fail validation", func(t *testing.T) {
		f := map[string]any{"type": "line", "address": "Dire Dawa", "voltage": 11.0}
		assert.Empty(t, ValidateFields(f))
	})
}

func TestAssetInputFieldsRoundTrip(t *testing.T) {
	in := AssetInput{
		Name:    "North SS",
		Type:    "substation",
		Address: "Mekelle",
		Voltage: 33,
	}
	fields := in.Fields()
	assert.Equal(t, "substation", fields["type"])
	assert.Equal(t, 33.0, fields["voltage"])
	assert.Empty(t, ValidateFields(fields))
}

func TestGridAssetFields(t *testing.T) {
	site := "Camp A"
	a := GridAsset{Name: "North SS", Type: "substation", Address: "Mekelle", Voltage: 33, Site: &site}
	fields := a.Fields()
	assert.Equal(t, "Camp A", fields["site"])
	assert.Equal(t, false, fields["deleted"])
	assert.Empty(t, ValidateFields(fields))
}

func TestSchemaField(t *testing.T) {
	fd, ok := SchemaField("type")
	require.True(t, ok)
	assert.True(t, fd.Required)
	assert.Equal(t, []string{"plant_type", "source"}, fd.Alternates)

	_, ok = SchemaField("nope")
	assert.False(t, ok)
}
