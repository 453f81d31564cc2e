package reactstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCauseUnwrapsWrapperTypes(t *testing.T) {
	boom := errors.New("boom")
	n := newNode(KindMap, 1, 1)

	require.Equal(t, boom, Cause(newUserError(n, boom)))
	require.Equal(t, boom, Cause(newProtocolError(n, "I1", boom)))
	require.Equal(t, boom, Cause(newResourceError(n, "sink write", boom)))
	require.Equal(t, boom, Cause(newFatal(n, boom, nil)))
	require.Equal(t, boom, Cause(boom))
}

func TestIsProtocolError(t *testing.T) {
	n := newNode(KindMap, 1, 1)
	require.True(t, IsProtocolError(newProtocolError(n, "I1", errors.New("demand went negative"))))
	require.False(t, IsProtocolError(newUserError(n, errors.New("boom"))))
	require.False(t, IsProtocolError(errors.New("plain")))
}
