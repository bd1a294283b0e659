package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("  hello world  \n"))

	text, err := GetSimpleText(reader, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("no newline"))

	text, err := GetSimpleText(reader, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "no newline", text)
}

func TestGetSimpleText_EmptyInputReturnsError(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader(""))

	_, err := GetSimpleText(reader, "Say something", &out)
	assert.Error(t, err)
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("line one\nline two\n\nignored\n"))

	text, err := GetMultiline(reader, "Note", &out)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestGetToken(t *testing.T) {
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(" secret "), nil }
	t.Cleanup(func() { readPassword = orig })

	var out bytes.Buffer
	tok, err := GetToken(&out)
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)
	assert.Contains(t, out.String(), "Enter token:")
}
