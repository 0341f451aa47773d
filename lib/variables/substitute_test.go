package variables

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstituteStringUndefinedIsEmpty(t *testing.T) {
	store := mapStore{}
	out, err := SubstituteString(store, "ssh ${HOST}", "", "")
	require.NoError(t, err)
	require.Equal(t, "ssh ", out)
}

func TestSubstituteStringSecretExpandsPlaintext(t *testing.T) {
	store := mapStore{
		"TOKEN": {Name: "TOKEN", Value: "s3cr3t", IsSecret: true},
	}
	out, err := SubstituteString(store, "auth=${TOKEN}", "", "")
	require.NoError(t, err)
	require.Equal(t, "auth=s3cr3t", out)
}

func TestSubstituteForCommandRejectsNewline(t *testing.T) {
	store := mapStore{
		"HOST": {Name: "HOST", Value: "a\nb"},
	}
	_, err := SubstituteForCommand(store, "ssh ${HOST}", "", "")
	require.Error(t, err)
	var unsafe *UnsafeValueError
	require.ErrorAs(t, err, &unsafe)
	require.Equal(t, "HOST", unsafe.Name)
}

func TestSubstituteForCommandAllowsTab(t *testing.T) {
	store := mapStore{
		"ARG": {Name: "ARG", Value: "a\tb"},
	}
	out, err := SubstituteForCommand(store, "${ARG}", "", "")
	require.NoError(t, err)
	require.Equal(t, "a\tb", out)
}

func TestValidateCommandValue(t *testing.T) {
	require.Equal(t, "", ValidateCommandValue("fine\tvalue"))
	require.NotEqual(t, "", ValidateCommandValue("bad\x00value"))
	require.NotEqual(t, "", ValidateCommandValue("bad\rvalue"))
	require.NotEqual(t, "", ValidateCommandValue("bad\nvalue"))
	require.NotEqual(t, "", ValidateCommandValue("bad\x01value"))
}
