package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_PlainWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	Status(&buf, true, "user.json", "user", 0)
	assert.Equal(t, "✔ user.json conforms to user\n", buf.String())

	buf.Reset()
	Status(&buf, false, "user.json", "user", 1)
	assert.Equal(t, "✘ user.json does not conform to user (1 error)\n", buf.String())

	buf.Reset()
	Status(&buf, false, "user.json", "user", 3)
	assert.Contains(t, buf.String(), "(3 errors)")
}

func TestIsTerminalAndWidth(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))
	assert.Equal(t, 80, Width(&buf, 80))
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(80)
	out, err := render("# Title\n\nsome `code`\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "code")
}
