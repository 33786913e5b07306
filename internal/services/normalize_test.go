package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAttributeName(t *testing.T) {
	assert.Equal(t, "ЦВЕТ", NormalizeAttributeName("  цвет "))
	assert.Equal(t, "ЕМКОСТЬ", NormalizeAttributeName("ёмкость"))
	assert.Equal(t, "SCREEN SIZE", NormalizeAttributeName("Screen Size"))
	assert.Equal(t, "", NormalizeAttributeName("   "))

	// non-breaking space folds to a plain space
	assert.Equal(t, "МОДЕЛЬНЫЙ ГОД", NormalizeAttributeName("Модельный\u00a0год"))
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "КРАСНЫЙ", NormalizeValue("красный"))
	assert.Equal(t, " XL ", NormalizeValue(" xl "))
}
