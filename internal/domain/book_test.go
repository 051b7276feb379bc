package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Fiction", "Non-Fiction", "Children's"}, Categories())
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory("Fiction"))
	assert.True(t, IsValidCategory("Children's"))
	assert.False(t, IsValidCategory("fiction"))
	assert.False(t, IsValidCategory("Horror"))
}

func TestCanonicalCategory(t *testing.T) {
	got, ok := CanonicalCategory("fiction")
	assert.True(t, ok)
	assert.Equal(t, "Fiction", got)

	got, ok = CanonicalCategory("NON-FICTION")
	assert.True(t, ok)
	assert.Equal(t, "Non-Fiction", got)

	_, ok = CanonicalCategory("Horror")
	assert.False(t, ok)
}
