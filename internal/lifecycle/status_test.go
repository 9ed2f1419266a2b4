package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextStatusWalksChainToTerminal(t *testing.T) {
	// From any non-terminal, repeatedly following NextStatus must reach a
	// terminal in exactly StepsToTerminal(s) hops: no cycles, no skips.
	for _, start := range chain[:len(chain)-1] {
		current := start
		steps := 0
		for !IsTerminal(current) {
			next, ok := NextStatus(current)
			require.True(t, ok, "non-terminal %s must have a successor", current)
			current = next
			steps++
			require.LessOrEqual(t, steps, len(chain), "cycle detected from %s", start)
		}
		require.Equal(t, StepsToTerminal(start), steps, "from %s", start)
	}
}

func TestNextStatusTerminals(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusPartiallyCompleted} {
		_, ok := NextStatus(s)
		require.False(t, ok, "%s must have no successor", s)
		require.True(t, IsTerminal(s))
		require.Equal(t, 0, StepsToTerminal(s))
	}
}

func TestNextStatusUnknown(t *testing.T) {
	_, ok := NextStatus(Status("shipped_mars"))
	require.False(t, ok)
	require.False(t, IsValid(Status("shipped_mars")))
}

func TestIsValid(t *testing.T) {
	for _, s := range chain {
		require.True(t, IsValid(s))
	}
	require.True(t, IsValid(StatusPartiallyCompleted))
}

func TestKindOf(t *testing.T) {
	require.Equal(t, TransitionRequiresReceiving, KindOf(StatusInTransitBogura, StatusReceivedHub))
	require.Equal(t, TransitionSimple, KindOf(StatusDraft, StatusPaymentConfirmed))
	require.Equal(t, TransitionSimple, KindOf(StatusArrivedBD, StatusInTransitBogura))
}
