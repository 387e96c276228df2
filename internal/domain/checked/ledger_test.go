package checked_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/opencanoetiming/c123-scoring/internal/domain/checked"
	"github.com/opencanoetiming/c123-scoring/internal/repository"
	"github.com/opencanoetiming/c123-scoring/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, store repository.KeyValueStore) (*checked.Ledger, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	ledger := checked.NewLedger(checked.Config{Store: store, Clock: clock})
	return ledger, clock
}

func TestLedger_DefaultsWhenAbsent(t *testing.T) {
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(context.Background(), "K1M_ST_BR1_6")

	require.False(t, ledger.IsChecked("101"))
	require.Nil(t, ledger.CheckedAt("101"))
}

func TestLedger_SetCheckedIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger, clock := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	ledger.SetChecked(ctx, "101", true)
	first := *ledger.CheckedAt("101")

	clock.Advance(time.Second)
	ledger.SetChecked(ctx, "101", true)
	second := *ledger.CheckedAt("101")

	require.True(t, ledger.IsChecked("101"))
	require.False(t, second.Before(first))
	require.Len(t, ledger.Entries(), 1)
}

func TestLedger_UncheckClearsTimestamp(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	ledger.SetChecked(ctx, "101", true)
	ledger.SetChecked(ctx, "101", false)

	require.False(t, ledger.IsChecked("101"))
	require.Nil(t, ledger.CheckedAt("101"))
	require.Len(t, ledger.Entries(), 1)
}

func TestLedger_Toggle(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	require.True(t, ledger.ToggleChecked(ctx, "7"))
	require.True(t, ledger.IsChecked("7"))
	require.False(t, ledger.ToggleChecked(ctx, "7"))
	require.False(t, ledger.IsChecked("7"))
}

func TestLedger_GroupScopes(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	ledger.SetGroup("g1")
	ledger.SetChecked(ctx, "101", true)
	require.True(t, ledger.IsChecked("101"))

	ledger.SetGroup("all")
	require.False(t, ledger.IsChecked("101"))
	require.Equal(t, "", ledger.GroupID())

	ledger.SetGroup("g2")
	require.False(t, ledger.IsChecked("101"))
}

func TestLedger_CheckMultipleSharesTimestamp(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	ledger.CheckMultiple(ctx, []string{"1", "2", "3"})
	at := ledger.CheckedAt("1")
	require.NotNil(t, at)
	require.True(t, at.Equal(*ledger.CheckedAt("2")))
	require.True(t, at.Equal(*ledger.CheckedAt("3")))

	ledger.UncheckMultiple(ctx, []string{"1", "3"})
	require.False(t, ledger.IsChecked("1"))
	require.True(t, ledger.IsChecked("2"))
	require.False(t, ledger.IsChecked("3"))
}

func TestLedger_ClearGroupLeavesOthers(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	ledger.SetChecked(ctx, "101", true)
	ledger.SetGroup("g1")
	ledger.CheckMultiple(ctx, []string{"101", "102"})
	ledger.SetGroup("g2")
	ledger.SetChecked(ctx, "101", true)

	ledger.SetGroup("g1")
	ledger.ClearChecked(ctx)
	require.False(t, ledger.IsChecked("101"))
	require.False(t, ledger.IsChecked("102"))

	ledger.SetGroup("g2")
	require.True(t, ledger.IsChecked("101"))
	ledger.SetGroup("")
	require.True(t, ledger.IsChecked("101"))
	require.Len(t, ledger.Entries(), 2)
}

func TestLedger_ClearAllWipesRace(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	ledger.SetChecked(ctx, "101", true)
	ledger.SetGroup("g1")
	ledger.SetChecked(ctx, "102", true)

	ledger.SetGroup("")
	ledger.ClearChecked(ctx)
	require.Empty(t, ledger.Entries())
}

func TestLedger_Progress(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger(t, repository.NewMemoryStore())
	ledger.Load(ctx, "race")

	empty := ledger.Progress(nil)
	require.Equal(t, checked.Progress{}, empty)
	require.False(t, empty.Visible())

	ledger.CheckMultiple(ctx, []string{"1", "2", "3"})
	require.Equal(t, checked.Progress{Checked: 3, Total: 4, Percentage: 75}, ledger.Progress([]string{"1", "2", "3", "4"}))
	require.Equal(t, 67, ledger.Progress([]string{"1", "2", "4"}).Percentage)
	require.True(t, ledger.Progress([]string{"1", "2"}).Complete())
}

func TestLedger_RaceSwitchIsolation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	ledger, _ := newLedger(t, store)

	ledger.Load(ctx, "A")
	ledger.SetGroup("g1")
	ledger.SetChecked(ctx, "101", true)

	ledger.Load(ctx, "B")
	require.False(t, ledger.IsChecked("101"))

	ledger.Load(ctx, "A")
	require.True(t, ledger.IsChecked("101"))
	require.NotNil(t, ledger.CheckedAt("101"))
}

func TestLedger_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	first, clock := newLedger(t, store)
	first.Load(ctx, "race")
	first.SetChecked(ctx, "5", true)

	second := checked.NewLedger(checked.Config{Store: store, Clock: clock})
	second.Load(ctx, "race")
	require.True(t, second.IsChecked("5"))
	require.True(t, clock.Now().Equal(*second.CheckedAt("5")))
}

func TestLedger_VersionMismatchStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	key := checked.StorageKey(checked.DefaultKeyPrefix, "race")
	require.NoError(t, store.Set(ctx, key, `{"version":2,"entries":[["5:all",{"bib":"5","groupId":null,"checked":true,"checkedAt":null}]]}`))

	ledger, _ := newLedger(t, store)
	ledger.Load(ctx, "race")
	require.False(t, ledger.IsChecked("5"))
	require.Empty(t, ledger.Entries())
}

func TestLedger_CorruptBlobStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(ctx, checked.StorageKey(checked.DefaultKeyPrefix, "race"), "{not json"))

	ledger, _ := newLedger(t, store)
	ledger.Load(ctx, "race")
	require.Empty(t, ledger.Entries())
}

func TestLedger_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := &mocks.KeyValueStore{}
	store.On("Get", ctx, mock.Anything).Return("", errors.New("storage disabled"))
	store.On("Set", ctx, mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

	ledger, _ := newLedger(t, store)
	ledger.Load(ctx, "race")
	ledger.SetChecked(ctx, "1", true)

	require.True(t, ledger.IsChecked("1"))
	store.AssertCalled(t, "Set", ctx, "c123-scoring-checked-race", mock.Anything)
}
