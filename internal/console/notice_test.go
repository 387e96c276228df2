package console_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/opencanoetiming/c123-scoring/internal/console"
	"github.com/stretchr/testify/require"
)

func TestNotifier_IDsAndCap(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1700000000000))
	n := console.NewNotifier(clock, 3)

	first := n.Show(console.NoticeSuccess, "saved")
	require.Equal(t, "notice-1-1700000000000", first.ID)

	for i := 2; i <= 5; i++ {
		clock.Advance(time.Millisecond)
		n.Show(console.NoticeWarning, fmt.Sprintf("msg %d", i))
	}

	list := n.List()
	require.Len(t, list, 3)
	require.Equal(t, "msg 3", list[0].Message)
	require.Equal(t, "notice-5-1700000000004", list[2].ID)
}

func TestNotifier_Dismiss(t *testing.T) {
	n := console.NewNotifier(clockwork.NewFakeClock(), 0)
	a := n.Show(console.NoticeError, "a")
	n.Show(console.NoticeError, "b")

	require.True(t, n.Dismiss(a.ID))
	require.False(t, n.Dismiss(a.ID))
	require.Len(t, n.List(), 1)
}

func TestNotifier_InstancesAreIsolated(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1))
	a := console.NewNotifier(clock, 0)
	b := console.NewNotifier(clock, 0)
	a.Show(console.NoticeSuccess, "x")
	require.Equal(t, "notice-1-1", b.Show(console.NoticeSuccess, "y").ID)
}
