package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrArg_MissingKeyReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", strArg(map[string]any{}, "name"))
	assert.Equal(t, "voidcat", strArg(map[string]any{"name": "voidcat"}, "name"))
}

func TestIntArg_OnlyAcceptsFloat64FromJSON(t *testing.T) {
	assert.Equal(t, 5, intArg(map[string]any{"priority": float64(5)}, "priority"))
	assert.Equal(t, 0, intArg(map[string]any{"priority": "5"}, "priority"))
	assert.Equal(t, 0, intArg(map[string]any{}, "priority"))
}

func TestStrSliceArg_FiltersNonStringElements(t *testing.T) {
	got := strSliceArg(map[string]any{"tags": []any{"a", 1, "b"}}, "tags")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestStrSliceArg_MissingKeyReturnsNil(t *testing.T) {
	assert.Nil(t, strSliceArg(map[string]any{}, "tags"))
}
