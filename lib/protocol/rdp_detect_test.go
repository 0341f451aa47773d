package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeLookPath(present map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if path, ok := present[name]; ok {
			return path, nil
		}
		return "", errors.New("exec: not found")
	}
}

// Scenario 3: Wayland session with wlfreerdp and xfreerdp both present
// selects wlfreerdp.
func TestDetectFreeRDPPrefersWaylandVariantUnderWaylandSession(t *testing.T) {
	lookPath := fakeLookPath(map[string]string{
		"wlfreerdp": "/usr/bin/wlfreerdp",
		"xfreerdp":  "/usr/bin/xfreerdp",
	})
	result, err := detectFreeRDP(true, lookPath)
	require.NoError(t, err)
	require.Equal(t, "wlfreerdp", result.Selected)
}

// Scenario 3: no Wayland env, only xfreerdp present, selects xfreerdp.
func TestDetectFreeRDPFallsBackToXfreerdpOutsideWayland(t *testing.T) {
	lookPath := fakeLookPath(map[string]string{
		"xfreerdp": "/usr/bin/xfreerdp",
	})
	result, err := detectFreeRDP(false, lookPath)
	require.NoError(t, err)
	require.Equal(t, "xfreerdp", result.Selected)
}

func TestDetectFreeRDPErrorsWhenNoCandidatePresent(t *testing.T) {
	_, err := detectFreeRDP(false, fakeLookPath(nil))
	require.Error(t, err)
}

func TestDetectFreeRDPRecordsEveryCandidateProbed(t *testing.T) {
	result, _ := detectFreeRDP(false, fakeLookPath(map[string]string{"xfreerdp": "/usr/bin/xfreerdp"}))
	require.Len(t, result.Candidates, len(x11Candidates))
}
