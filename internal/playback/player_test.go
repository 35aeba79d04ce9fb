package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-playback/internal/model"
	"backtest-playback/internal/store"
)

func newTestPlayer(t *testing.T, window int) (*Player, *manualClock, *recordingSink) {
	t.Helper()
	clock := &manualClock{}
	sink := newRecordingSink()
	p, err := NewPlayer(store.New(), sink, Options{
		WindowSize:     window,
		BaseFrameDelay: 40 * time.Millisecond,
		Speeds:         Speeds{ActiveTrade: 4, General: 1},
		Clock:          clock,
	})
	require.NoError(t, err)
	return p, clock, sink
}

func TestPlayerSpeedChangeRestartsFromFirstWindow(t *testing.T) {
	const window = 5
	p, clock, sink := newTestPlayer(t, window)

	require.True(t, p.Load(model.NewSeries(bars(30))))
	for i := 0; i < 6; i++ {
		require.True(t, clock.Step())
	}
	require.Equal(t, window+7, p.Status().Cursor)
	genBefore := p.Status().Generation

	require.NoError(t, p.SetSpeeds(Speeds{ActiveTrade: 2, General: 2}))

	st := p.Status()
	assert.Equal(t, window+1, st.Cursor, "restart, not resume")
	assert.Equal(t, 1, st.Ticks)
	assert.Greater(t, st.Generation, genBefore)
	assert.Equal(t, window, sink.frames[len(sink.frames)-1].Cursor)
	assert.Equal(t, 20*time.Millisecond, st.Delays.General)
	assert.Equal(t, 1, clock.Pending())
}

func TestPlayerUnchangedSpeedsDoNotRestart(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 5)
	require.True(t, p.Load(model.NewSeries(bars(30))))
	clock.Step()
	before := p.Status()

	require.NoError(t, p.SetSpeeds(Speeds{ActiveTrade: 4, General: 1}))

	after := p.Status()
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, before.Generation, after.Generation)
}

func TestPlayerRejectsDegenerateSpeeds(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 5)
	require.True(t, p.Load(model.NewSeries(bars(30))))
	clock.Step()
	before := p.Status()

	for _, s := range []Speeds{{ActiveTrade: 0, General: 1}, {ActiveTrade: 1, General: -2}} {
		assert.ErrorIs(t, p.SetSpeeds(s), ErrInvalidSpeed)
	}

	after := p.Status()
	assert.Equal(t, before.Cursor, after.Cursor)
	assert.Equal(t, before.Speeds, after.Speeds)
}

func TestPlayerInsufficientDataIsNoop(t *testing.T) {
	p, clock, sink := newTestPlayer(t, 5)

	assert.False(t, p.Load(model.NewSeries(bars(4))))
	assert.Empty(t, sink.frames)
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, 4, p.Status().Bars)
}

func TestPlayerLoadReplacesRunningSeries(t *testing.T) {
	p, clock, sink := newTestPlayer(t, 5)
	bs := bars(30)
	openTrade(bs, 5, 20, 2005)
	require.True(t, p.Load(model.NewSeries(bs)))
	clock.Step()
	clock.Step()
	require.NotEmpty(t, sink.live)

	next := model.NewSeries(bars(8))
	require.True(t, p.Load(next))

	assert.Empty(t, sink.live, "markers of the replaced series are removed")
	assert.Equal(t, next.ID, p.Store().Current().ID)
	assert.Equal(t, next.ID.String(), sink.frames[len(sink.frames)-1].SeriesID)
	assert.Equal(t, 1, clock.Pending())
}

func TestPlayerDispose(t *testing.T) {
	p, clock, sink := newTestPlayer(t, 5)
	require.True(t, p.Load(model.NewSeries(bars(30))))

	p.Dispose()
	rendered := len(sink.frames)

	assert.False(t, clock.Step())
	assert.False(t, p.Load(model.NewSeries(bars(30))))
	assert.False(t, p.Replay())
	assert.Len(t, sink.frames, rendered)
}

func TestPlayerReplayAndStatus(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 5)
	bs := bars(12)
	openTrade(bs, 6, 8, 2006)
	require.True(t, p.Load(model.NewSeries(bs)))
	clock.Drain(50)

	st := p.Status()
	assert.Equal(t, StateFinished, st.State)
	require.NotNil(t, st.LastSummary)
	assert.Equal(t, bs[9].TotalProfit, st.LastSummary.TotalProfit)
	assert.Equal(t, 12, st.Bars)
	assert.Equal(t, EstimateDuration(p.Store().Current(), 5, st.Delays), st.Estimated)

	p.Stop()
	assert.Equal(t, StateStopped, p.Status().State)

	require.True(t, p.Replay())
	assert.Equal(t, StateRunning, p.Status().State)
	assert.Equal(t, 6, p.Status().Cursor)
}
