package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashStringDeterministic(t *testing.T) {
	assert.Equal(t, HashString("u-1"), HashString("u-1"))
	assert.NotEqual(t, HashString("u-1"), HashString("u-2"))
}

func TestHashStringFixedLength(t *testing.T) {
	assert.Len(t, HashString(""), 32)
	assert.Len(t, HashString("a very long input string that exceeds the digest size by a wide margin"), 32)
}
