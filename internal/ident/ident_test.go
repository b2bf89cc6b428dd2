package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := New(PrefixProduct)
	assert.True(t, HasPrefix(id, PrefixProduct))
	assert.False(t, HasPrefix(id, PrefixSession))
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New(PrefixTransaction)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
