package secret

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextRevealAndDestroy(t *testing.T) {
	s := NewString("hunter2")
	require.Equal(t, "hunter2", s.Reveal())
	require.False(t, s.IsEmpty())

	s.Destroy()
	require.True(t, s.IsEmpty())
	require.Equal(t, "", s.Reveal())
}

func TestTextNeverPrintsPlaintext(t *testing.T) {
	s := NewString("hunter2")
	require.Equal(t, "[REDACTED]", s.String())
	require.NotContains(t, s.String(), "hunter2")

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.NotContains(t, string(out), "hunter2")
}

func TestTextEqualConstantTime(t *testing.T) {
	a := NewString("matching-secret")
	b := NewString("matching-secret")
	c := NewString("different")

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(NewString("short")))
}

func TestNilTextIsSafe(t *testing.T) {
	var s *Text
	require.True(t, s.IsEmpty())
	require.Equal(t, "", s.Reveal())
	require.Equal(t, "", s.String())
	s.Destroy()
}
