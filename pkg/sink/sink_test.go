package sink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	require.NoError(t, c.Write(" a | b "))
	require.NoError(t, c.Write(" c | d "))
	require.NoError(t, c.Close())

	assert.Equal(t, " a | b \n c | d \n", buf.String())
}

func TestOpenConsole(t *testing.T) {
	s, err := Open(true, "")
	require.NoError(t, err)
	assert.IsType(t, &Console{}, s)
}

func TestXRootBadDisplay(t *testing.T) {
	_, err := NewXRoot("not-a-display")
	assert.Error(t, err)
}
