package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"mata", "do", "jogi", "183x61", "cm"}, Words("Mata do Jogi, 183x61 cm!"))
	assert.Equal(t, []string{"für", "die", "küche"}, Words("Für die KÜCHE"))
	assert.Empty(t, Words(" -- "))
}

func TestSet(t *testing.T) {
	s := NewSet("Mata do jogi dla dzieci")

	assert.True(t, s.Has("DLA"))
	assert.False(t, s.Has("dz"))
	assert.Equal(t, 2, s.CountOf([]string{"do", "dla", "dla", "und"}))

	w, ok := s.AnyOf([]string{"und", "dla"})
	assert.True(t, ok)
	assert.Equal(t, "dla", w)
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 4, RuneLen("żółw"))
}
