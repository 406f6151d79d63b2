package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCOCOClassTable(t *testing.T) {
	table := COCOClassTable()

	assert.Equal(t, 80, table.Len())
	assert.Equal(t, "person", table.Name(0))
	assert.Equal(t, "bicycle", table.Name(1))
	assert.Equal(t, "toothbrush", table.Name(79))
}

func TestClassTableOutOfRange(t *testing.T) {
	table := NewClassTable([]string{"a", "b"})

	assert.Equal(t, "unknown_2", table.Name(2))
	assert.Equal(t, "unknown_-1", table.Name(-1))
}

func TestNewClassTableCopiesInput(t *testing.T) {
	names := []string{"a", "b"}
	table := NewClassTable(names)
	names[0] = "mutated"

	assert.Equal(t, "a", table.Name(0))
}
