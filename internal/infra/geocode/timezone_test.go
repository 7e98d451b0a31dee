package geocode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimezoneAt(t *testing.T) {
	finder, err := NewTZFinder()
	require.NoError(t, err)

	name, err := finder.TimezoneAt(1.2897, 103.8501)
	require.NoError(t, err)
	require.Equal(t, "Asia/Singapore", name)

	name, err = finder.TimezoneAt(51.5074, -0.1278)
	require.NoError(t, err)
	require.Equal(t, "Europe/London", name)

	_, err = finder.TimezoneAt(91, 0)
	require.Error(t, err)
}
