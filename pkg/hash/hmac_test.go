package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHmac256(t *testing.T) {
	first, err := ComputeHmac256("a@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	again, err := ComputeHmac256("a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := ComputeHmac256("b@example.com", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	otherSecret, err := ComputeHmac256("a@example.com", "different")
	require.NoError(t, err)
	assert.NotEqual(t, first, otherSecret)
}
