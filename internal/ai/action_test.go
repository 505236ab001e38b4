package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionInt_Coercions(t *testing.T) {
	a := Action{Args: map[string]any{
		"float":  float64(3),
		"quoted": "7",
		"bad":    "seven",
		"nilval": nil,
	}}

	v, ok := a.Int("float")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = a.Int("quoted")
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = a.Int("bad")
	assert.False(t, ok)
	_, ok = a.Int("nilval")
	assert.False(t, ok)
	_, ok = a.Int("missing")
	assert.False(t, ok)
}

func TestActionJSON_RoundTripFlattens(t *testing.T) {
	a := Action{Tool: "go_to_chapter", Args: map[string]any{"position": float64(2)}}

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tool":"go_to_chapter","position":2}`, string(data))

	var back Action
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "go_to_chapter", back.Tool)
	pos, ok := back.Int("position")
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
}
