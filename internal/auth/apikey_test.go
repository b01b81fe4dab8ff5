package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoKeysAllowsEverything(t *testing.T) {
	a := NewAPIKeyAuth(nil)

	assert.False(t, a.Enabled())
	assert.True(t, a.IsValidKey(""))
	assert.True(t, a.IsValidKey("anything"))
}

func TestConfiguredKeys(t *testing.T) {
	a := NewAPIKeyAuth([]string{"k1", ""})

	assert.True(t, a.Enabled())
	assert.True(t, a.IsValidKey("k1"))
	assert.False(t, a.IsValidKey(""))
	assert.False(t, a.IsValidKey("k2"))

	a.AddKey("k2")
	assert.True(t, a.IsValidKey("k2"))

	a.RemoveKey("k1")
	assert.False(t, a.IsValidKey("k1"))
}
