package throttle_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
	"github.com/dmitrymomot/gridkit/pkg/rules"
	"github.com/dmitrymomot/gridkit/pkg/throttle"
)

func testColumns() []gridmodel.Column {
	return []gridmodel.Column{
		{Name: "Name", Kind: gridmodel.KindString},
		{Name: "Age", Kind: gridmodel.KindInt},
		gridmodel.ActionColumn(),
		gridmodel.AlertColumn(),
	}
}

// stubValidator records validation calls and can simulate slow validations.
type stubValidator struct {
	mu          sync.Mutex
	values      []string
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
	ruleTable   map[string][]rules.Rule
}

func (v *stubValidator) ValidateCell(ctx context.Context, cell *gridmodel.Cell, row *gridmodel.Row) rules.Result {
	cur := v.inFlight.Add(1)
	defer v.inFlight.Add(-1)
	for {
		max := v.maxInFlight.Load()
		if cur <= max || v.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}

	if v.delay > 0 {
		time.Sleep(v.delay)
	}

	v.mu.Lock()
	v.values = append(v.values, cell.Value().Format())
	v.mu.Unlock()

	return rules.Result{Column: cell.Column(), RowIndex: row.Index(), Valid: true}
}

func (v *stubValidator) Rules(column string) []rules.Rule {
	return v.ruleTable[column]
}

func (v *stubValidator) calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.values)
}

func (v *stubValidator) lastValue() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.values) == 0 {
		return ""
	}
	return v.values[len(v.values)-1]
}

func fastConfig() throttle.Config {
	return throttle.Config{
		TypingDelay:   30 * time.Millisecond,
		PasteDelay:    30 * time.Millisecond,
		BatchDelay:    10 * time.Millisecond,
		ComplexDelay:  30 * time.Millisecond,
		MaxConcurrent: 4,
		Enabled:       true,
	}
}

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := fastConfig()
		cfg.MaxConcurrent = 0
		_, err := throttle.NewScheduler(cfg, &stubValidator{})
		require.ErrorIs(t, err, throttle.ErrInvalidConcurrency)

		cfg = fastConfig()
		cfg.TypingDelay = -time.Second
		_, err = throttle.NewScheduler(cfg, &stubValidator{})
		require.ErrorIs(t, err, throttle.ErrNegativeDelay)
	})

	t.Run("rejects nil validator", func(t *testing.T) {
		_, err := throttle.NewScheduler(fastConfig(), nil)
		require.ErrorIs(t, err, throttle.ErrNilValidator)
	})
}

func TestDebounce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rapid edits validate once with the final value", func(t *testing.T) {
		v := &stubValidator{}
		s, err := throttle.NewScheduler(fastConfig(), v)
		require.NoError(t, err)
		defer s.Close()

		row := gridmodel.NewRow(0, testColumns())
		cell, _ := row.Cell("Age")

		for _, raw := range []string{"7", "70", "701", "40"} {
			require.NoError(t, row.SetValue("Age", gridmodel.StringValue(raw)))
			s.Schedule(ctx, cell, row, throttle.DelayTyping)
			time.Sleep(5 * time.Millisecond) // well inside the 30ms window
		}

		require.Eventually(t, func() bool { return v.calls() == 1 }, time.Second, 10*time.Millisecond)
		assert.Equal(t, "40", v.lastValue())

		// No stragglers fire later.
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, 1, v.calls())
		assert.Zero(t, s.PendingCount())
	})

	t.Run("spaced edits validate individually", func(t *testing.T) {
		v := &stubValidator{}
		s, err := throttle.NewScheduler(fastConfig(), v)
		require.NoError(t, err)
		defer s.Close()

		row := gridmodel.NewRow(0, testColumns())
		cell, _ := row.Cell("Age")

		for _, raw := range []string{"10", "20"} {
			require.NoError(t, row.SetValue("Age", gridmodel.StringValue(raw)))
			s.Schedule(ctx, cell, row, throttle.DelayTyping)
			time.Sleep(100 * time.Millisecond) // beyond the window
		}

		require.Eventually(t, func() bool { return v.calls() == 2 }, time.Second, 10*time.Millisecond)
	})

	t.Run("different cells do not cancel each other", func(t *testing.T) {
		v := &stubValidator{}
		s, err := throttle.NewScheduler(fastConfig(), v)
		require.NoError(t, err)
		defer s.Close()

		row := gridmodel.NewRow(0, testColumns())
		name, _ := row.Cell("Name")
		age, _ := row.Cell("Age")

		require.NoError(t, row.SetValue("Name", gridmodel.StringValue("Ada")))
		require.NoError(t, row.SetValue("Age", gridmodel.StringValue("40")))
		s.Schedule(ctx, name, row, throttle.DelayTyping)
		s.Schedule(ctx, age, row, throttle.DelayTyping)

		require.Eventually(t, func() bool { return v.calls() == 2 }, time.Second, 10*time.Millisecond)
	})
}

func TestSupersededValidationNeverLands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Real engine end to end: "70" is superseded by "40" inside the window,
	// so the cell must come out valid.
	engine := rules.NewEngine()
	require.NoError(t, engine.AddRule(rules.Range("Age", 18, 65)))

	s, err := throttle.NewScheduler(fastConfig(), engine)
	require.NoError(t, err)
	defer s.Close()

	row := gridmodel.NewRow(0, testColumns())
	cell, _ := row.Cell("Age")

	require.NoError(t, row.SetValue("Age", gridmodel.StringValue("70")))
	s.Schedule(ctx, cell, row, throttle.DelayTyping)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, row.SetValue("Age", gridmodel.StringValue("40")))
	s.Schedule(ctx, cell, row, throttle.DelayTyping)

	require.Eventually(t, func() bool { return s.PendingCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.False(t, cell.HasError())
	assert.False(t, row.HasValidationErrors())
}

func TestDebouncedErrorAppears(t *testing.T) {
	t.Parallel()

	engine := rules.NewEngine()
	require.NoError(t, engine.AddRule(rules.Range("Age", 18, 65)))

	s, err := throttle.NewScheduler(fastConfig(), engine)
	require.NoError(t, err)
	defer s.Close()

	row := gridmodel.NewRow(0, testColumns())
	cell, _ := row.Cell("Age")

	require.NoError(t, row.SetValue("Age", gridmodel.StringValue("70")))
	s.Schedule(context.Background(), cell, row, throttle.DelayTyping)

	assert.False(t, cell.HasError()) // not before the window elapses
	require.Eventually(t, cell.HasError, time.Second, 10*time.Millisecond)
	assert.True(t, row.HasValidationErrors())
}

func TestConcurrencyBound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	v := &stubValidator{delay: 40 * time.Millisecond}
	cfg := fastConfig()
	cfg.TypingDelay = 5 * time.Millisecond
	cfg.MaxConcurrent = 2

	s, err := throttle.NewScheduler(cfg, v)
	require.NoError(t, err)
	defer s.Close()

	const cells = 12
	for i := 0; i < cells; i++ {
		row := gridmodel.NewRow(i, testColumns())
		require.NoError(t, row.SetValue("Age", gridmodel.IntValue(int64(i))))
		cell, _ := row.Cell("Age")
		s.Schedule(ctx, cell, row, throttle.DelayTyping)
	}

	require.Eventually(t, func() bool { return v.calls() == cells }, 5*time.Second, 10*time.Millisecond)
	assert.LessOrEqual(t, v.maxInFlight.Load(), int32(2))
}

func TestEmptyRowSkipsScheduling(t *testing.T) {
	t.Parallel()

	v := &stubValidator{}
	s, err := throttle.NewScheduler(fastConfig(), v)
	require.NoError(t, err)
	defer s.Close()

	row := gridmodel.NewRow(0, testColumns())
	cell, _ := row.Cell("Age")
	cell.SetError("stale")
	row.UpdateValidationStatus()

	s.Schedule(context.Background(), cell, row, throttle.DelayTyping)

	assert.False(t, cell.HasError())
	assert.False(t, row.HasValidationErrors())
	assert.Zero(t, s.PendingCount())

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, v.calls())
}

func TestThrottlingDisabled(t *testing.T) {
	t.Parallel()

	v := &stubValidator{}
	cfg := fastConfig()
	cfg.Enabled = false

	s, err := throttle.NewScheduler(cfg, v)
	require.NoError(t, err)
	defer s.Close()

	row := gridmodel.NewRow(0, testColumns())
	require.NoError(t, row.SetValue("Age", gridmodel.IntValue(70)))
	cell, _ := row.Cell("Age")

	s.Schedule(context.Background(), cell, row, throttle.DelayTyping)

	// Synchronous: no waiting needed.
	assert.Equal(t, 1, v.calls())
	assert.Zero(t, s.PendingCount())
}

func TestComplexColumnUsesLongerDelay(t *testing.T) {
	t.Parallel()

	v := &stubValidator{ruleTable: map[string][]rules.Rule{
		"Age": {
			rules.Typed("Age", gridmodel.KindInt),
			rules.Required("Age"),
			rules.Range("Age", 18, 65),
		},
	}}
	cfg := fastConfig()
	cfg.TypingDelay = 10 * time.Millisecond
	cfg.ComplexDelay = 150 * time.Millisecond

	s, err := throttle.NewScheduler(cfg, v)
	require.NoError(t, err)
	defer s.Close()

	row := gridmodel.NewRow(0, testColumns())
	require.NoError(t, row.SetValue("Age", gridmodel.IntValue(40)))
	cell, _ := row.Cell("Age")

	s.Schedule(context.Background(), cell, row, throttle.DelayTyping)

	time.Sleep(60 * time.Millisecond) // past typing delay, inside complex delay
	assert.Zero(t, v.calls())
	require.Eventually(t, func() bool { return v.calls() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSetMaxConcurrent(t *testing.T) {
	t.Parallel()

	t.Run("rejects bounds below one", func(t *testing.T) {
		s, err := throttle.NewScheduler(fastConfig(), &stubValidator{})
		require.NoError(t, err)
		defer s.Close()
		require.ErrorIs(t, s.SetMaxConcurrent(0), throttle.ErrInvalidConcurrency)
	})

	t.Run("resize while busy strands nothing", func(t *testing.T) {
		v := &stubValidator{delay: 30 * time.Millisecond}
		cfg := fastConfig()
		cfg.TypingDelay = 5 * time.Millisecond
		cfg.MaxConcurrent = 1

		s, err := throttle.NewScheduler(cfg, v)
		require.NoError(t, err)
		defer s.Close()

		const cells = 6
		for i := 0; i < cells; i++ {
			row := gridmodel.NewRow(i, testColumns())
			require.NoError(t, row.SetValue("Age", gridmodel.IntValue(int64(i))))
			cell, _ := row.Cell("Age")
			s.Schedule(context.Background(), cell, row, throttle.DelayTyping)
		}

		time.Sleep(20 * time.Millisecond)
		require.NoError(t, s.SetMaxConcurrent(4))
		assert.Equal(t, 4, s.MaxConcurrent())

		require.Eventually(t, func() bool { return v.calls() == cells }, 5*time.Second, 10*time.Millisecond)
	})
}

func TestClose(t *testing.T) {
	t.Parallel()

	t.Run("cancels pending work", func(t *testing.T) {
		v := &stubValidator{}
		cfg := fastConfig()
		cfg.TypingDelay = 200 * time.Millisecond

		s, err := throttle.NewScheduler(cfg, v)
		require.NoError(t, err)

		row := gridmodel.NewRow(0, testColumns())
		require.NoError(t, row.SetValue("Age", gridmodel.IntValue(40)))
		cell, _ := row.Cell("Age")
		s.Schedule(context.Background(), cell, row, throttle.DelayTyping)

		require.NoError(t, s.Close())
		assert.Zero(t, v.calls())
		assert.Zero(t, s.PendingCount())
	})

	t.Run("idempotent, schedule afterwards is a no-op", func(t *testing.T) {
		v := &stubValidator{}
		s, err := throttle.NewScheduler(fastConfig(), v)
		require.NoError(t, err)

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		row := gridmodel.NewRow(0, testColumns())
		require.NoError(t, row.SetValue("Age", gridmodel.IntValue(40)))
		cell, _ := row.Cell("Age")
		s.Schedule(context.Background(), cell, row, throttle.DelayTyping)

		time.Sleep(50 * time.Millisecond)
		assert.Zero(t, v.calls())
	})

	t.Run("waits for operations scheduled concurrently", func(t *testing.T) {
		v := &stubValidator{}
		cfg := fastConfig()
		cfg.TypingDelay = time.Millisecond

		s, err := throttle.NewScheduler(cfg, v)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			row := gridmodel.NewRow(i, testColumns())
			require.NoError(t, row.SetValue("Age", gridmodel.IntValue(40)))
			cell, _ := row.Cell("Age")
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Schedule(context.Background(), cell, row, throttle.DelayTyping)
			}()
		}

		require.NoError(t, s.Close())
		wg.Wait()

		// Close already waited for everything it admitted: no validation
		// lands after it returns.
		settled := v.calls()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, settled, v.calls())
		assert.Zero(t, s.PendingCount())
	})
}

func TestConfig(t *testing.T) {
	// No t.Parallel: t.Setenv is incompatible with parallel tests.

	t.Run("defaults validate", func(t *testing.T) {
		require.NoError(t, throttle.DefaultConfig().Validate())
	})

	t.Run("load from environment", func(t *testing.T) {
		t.Setenv("GRID_TYPING_DELAY", "150ms")
		t.Setenv("GRID_MAX_CONCURRENT", "7")

		cfg, err := throttle.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 150*time.Millisecond, cfg.TypingDelay)
		assert.Equal(t, 7, cfg.MaxConcurrent)
		assert.True(t, cfg.Enabled)
	})

	t.Run("invalid environment values fail", func(t *testing.T) {
		t.Setenv("GRID_MAX_CONCURRENT", "0")
		_, err := throttle.LoadConfig()
		require.ErrorIs(t, err, throttle.ErrInvalidConcurrency)
	})
}
