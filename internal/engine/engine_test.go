package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"github.com/genricoloni/mpdnotify/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// fakeMonitor hands out buffered channels the test fills up front
type fakeMonitor struct {
	events   chan domain.SubsystemEvent
	errs     chan error
	startErr error
	started  bool
	stopped  bool
}

func newFakeMonitor(subsystems ...string) *fakeMonitor {
	m := &fakeMonitor{
		events: make(chan domain.SubsystemEvent, len(subsystems)),
		errs:   make(chan error, 1),
	}
	for _, s := range subsystems {
		m.events <- domain.SubsystemEvent{Subsystem: s}
	}
	return m
}

func (m *fakeMonitor) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}

func (m *fakeMonitor) Stop(ctx context.Context) error {
	m.stopped = true
	return nil
}

func (m *fakeMonitor) Events() <-chan domain.SubsystemEvent { return m.events }
func (m *fakeMonitor) Errors() <-chan error                  { return m.errs }

// fakeShutdowner records how shutdown was requested.
// fx exit codes are opaque options, so only their presence is kept.
type fakeShutdowner struct {
	mu       sync.Mutex
	called   chan struct{}
	withCode bool
}

func newFakeShutdowner() *fakeShutdowner {
	return &fakeShutdowner{called: make(chan struct{})}
}

func (s *fakeShutdowner) Shutdown(opts ...fx.ShutdownOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withCode = len(opts) > 0
	close(s.called)
	return nil
}

func playing(title string) domain.SongSnapshot {
	return domain.SongSnapshot{
		State:  domain.StatePlaying,
		Artist: "Artist",
		Album:  "Album",
		Title:  title,
		Art:    domain.NoArt(),
	}
}

func payloadFor(snap domain.SongSnapshot) domain.NotificationPayload {
	return domain.NotificationPayload{Summary: "Playing:", Body: snap.Title, TimeoutMs: 5000}
}

func TestRun_SingleIdentityAcrossUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := mocks.NewMockSnapshotter(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	const updates = 4
	mon := newFakeMonitor("player", "player", "player", "player")
	close(mon.events)

	player.EXPECT().Snapshot(gomock.Any()).Return(playing("Song"), nil).Times(updates + 1)
	renderer.EXPECT().Render(gomock.Any(), playing("Song")).Return(payloadFor(playing("Song")), nil).Times(updates + 1)

	gomock.InOrder(
		notifier.EXPECT().Show(gomock.Any(), payloadFor(playing("Song"))).Return(domain.NotificationID(7), nil),
		notifier.EXPECT().Update(gomock.Any(), domain.NotificationID(7), payloadFor(playing("Song"))).
			Return(domain.NotificationID(7), nil).Times(updates),
	)

	e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, newFakeShutdowner())
	require.NoError(t, e.Run(context.Background()))
}

func TestRun_FollowsReturnedIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := mocks.NewMockSnapshotter(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	mon := newFakeMonitor("player", "player")
	close(mon.events)

	player.EXPECT().Snapshot(gomock.Any()).Return(playing("Song"), nil).Times(3)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(payloadFor(playing("Song")), nil).Times(3)

	// A server may hand back a new id when the old notification expired
	gomock.InOrder(
		notifier.EXPECT().Show(gomock.Any(), gomock.Any()).Return(domain.NotificationID(1), nil),
		notifier.EXPECT().Update(gomock.Any(), domain.NotificationID(1), gomock.Any()).Return(domain.NotificationID(2), nil),
		notifier.EXPECT().Update(gomock.Any(), domain.NotificationID(2), gomock.Any()).Return(domain.NotificationID(2), nil),
	)

	e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, newFakeShutdowner())
	require.NoError(t, e.Run(context.Background()))
}

func TestRun_IgnoresOtherSubsystems(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := mocks.NewMockSnapshotter(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	mon := newFakeMonitor("playlist", "mixer", "options", "player", "database")
	close(mon.events)

	player.EXPECT().Snapshot(gomock.Any()).Return(playing("Song"), nil).Times(2)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(payloadFor(playing("Song")), nil).Times(2)
	notifier.EXPECT().Show(gomock.Any(), gomock.Any()).Return(domain.NotificationID(3), nil)
	notifier.EXPECT().Update(gomock.Any(), domain.NotificationID(3), gomock.Any()).Return(domain.NotificationID(3), nil)

	e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, newFakeShutdowner())
	require.NoError(t, e.Run(context.Background()))
}

func TestRun_RenderErrorDegradesToText(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := mocks.NewMockSnapshotter(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	mon := newFakeMonitor()
	close(mon.events)

	snap := playing("Song")
	snap.Art = domain.RawArt([]byte("not an image"), domain.ArtSourceFile)
	textOnly := payloadFor(snap)

	player.EXPECT().Snapshot(gomock.Any()).Return(snap, nil)
	renderer.EXPECT().Render(gomock.Any(), snap).Return(textOnly, errors.New("image: unknown format"))
	notifier.EXPECT().Show(gomock.Any(), textOnly).Return(domain.NotificationID(1), nil)

	e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, newFakeShutdowner())
	require.NoError(t, e.Run(context.Background()))
}

func TestRun_Errors(t *testing.T) {
	connErr := errors.New("connection reset by peer")

	tests := []struct {
		name    string
		setup   func(*fakeMonitor, *mocks.MockSnapshotter, *mocks.MockRenderer, *mocks.MockNotifier)
		wantMsg string
	}{
		{
			name: "Initial Snapshot Fails",
			setup: func(mon *fakeMonitor, p *mocks.MockSnapshotter, r *mocks.MockRenderer, n *mocks.MockNotifier) {
				p.EXPECT().Snapshot(gomock.Any()).Return(domain.StoppedSnapshot(), connErr)
			},
			wantMsg: "failed to read player state",
		},
		{
			name: "Show Fails",
			setup: func(mon *fakeMonitor, p *mocks.MockSnapshotter, r *mocks.MockRenderer, n *mocks.MockNotifier) {
				p.EXPECT().Snapshot(gomock.Any()).Return(domain.StoppedSnapshot(), nil)
				r.EXPECT().Render(gomock.Any(), gomock.Any()).Return(domain.NotificationPayload{Summary: "Stopped"}, nil)
				n.EXPECT().Show(gomock.Any(), gomock.Any()).Return(domain.NotificationID(0), connErr)
			},
			wantMsg: "failed to show notification",
		},
		{
			name: "Snapshot Fails On Event",
			setup: func(mon *fakeMonitor, p *mocks.MockSnapshotter, r *mocks.MockRenderer, n *mocks.MockNotifier) {
				mon.events <- domain.SubsystemEvent{Subsystem: domain.SubsystemPlayer}
				gomock.InOrder(
					p.EXPECT().Snapshot(gomock.Any()).Return(playing("Song"), nil),
					p.EXPECT().Snapshot(gomock.Any()).Return(domain.StoppedSnapshot(), connErr),
				)
				r.EXPECT().Render(gomock.Any(), gomock.Any()).Return(payloadFor(playing("Song")), nil)
				n.EXPECT().Show(gomock.Any(), gomock.Any()).Return(domain.NotificationID(1), nil)
			},
			wantMsg: "failed to read player state",
		},
		{
			name: "Stream Error Queued Before Close",
			setup: func(mon *fakeMonitor, p *mocks.MockSnapshotter, r *mocks.MockRenderer, n *mocks.MockNotifier) {
				mon.errs <- connErr
				close(mon.events)
				p.EXPECT().Snapshot(gomock.Any()).Return(domain.StoppedSnapshot(), nil)
				r.EXPECT().Render(gomock.Any(), gomock.Any()).Return(domain.NotificationPayload{Summary: "Stopped"}, nil)
				n.EXPECT().Show(gomock.Any(), gomock.Any()).Return(domain.NotificationID(1), nil)
			},
			wantMsg: "mpd event stream failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			player := mocks.NewMockSnapshotter(ctrl)
			renderer := mocks.NewMockRenderer(ctrl)
			notifier := mocks.NewMockNotifier(ctrl)
			mon := &fakeMonitor{
				events: make(chan domain.SubsystemEvent, 1),
				errs:   make(chan error, 1),
			}
			tt.setup(mon, player, renderer, notifier)

			e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, newFakeShutdowner())
			err := e.Run(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, connErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestStart_StreamEndRequestsShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := mocks.NewMockSnapshotter(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	mon := newFakeMonitor()
	close(mon.events)

	player.EXPECT().Snapshot(gomock.Any()).Return(domain.StoppedSnapshot(), nil)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(domain.NotificationPayload{Summary: "Stopped"}, nil)
	notifier.EXPECT().Show(gomock.Any(), gomock.Any()).Return(domain.NotificationID(1), nil)
	notifier.EXPECT().Close().Return(nil)

	shut := newFakeShutdowner()
	e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, shut)

	require.NoError(t, e.Start(context.Background()))
	assert.True(t, mon.started)

	select {
	case <-shut.called:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown was not requested")
	}

	shut.mu.Lock()
	assert.False(t, shut.withCode)
	shut.mu.Unlock()

	require.NoError(t, e.Stop(context.Background()))
	assert.True(t, mon.stopped)
}

func TestStart_FatalErrorRequestsNonZeroExit(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := mocks.NewMockSnapshotter(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	mon := newFakeMonitor()
	player.EXPECT().Snapshot(gomock.Any()).Return(domain.StoppedSnapshot(), errors.New("EOF"))

	shut := newFakeShutdowner()
	e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, shut)
	require.NoError(t, e.Start(context.Background()))

	select {
	case <-shut.called:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown was not requested")
	}

	shut.mu.Lock()
	defer shut.mu.Unlock()
	assert.True(t, shut.withCode)
}

func TestStart_MonitorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mon := newFakeMonitor()
	mon.startErr = errors.New("connection refused")

	e := NewEngine(zap.NewNop(), mon,
		mocks.NewMockSnapshotter(ctrl), mocks.NewMockRenderer(ctrl), mocks.NewMockNotifier(ctrl),
		newFakeShutdowner())

	err := e.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStop_CancelsIdleLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	player := mocks.NewMockSnapshotter(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	// Events stay open, so the loop only ends through Stop
	mon := newFakeMonitor()

	player.EXPECT().Snapshot(gomock.Any()).Return(playing("Song"), nil)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(payloadFor(playing("Song")), nil)
	shownCh := make(chan struct{})
	notifier.EXPECT().Show(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, p domain.NotificationPayload) (domain.NotificationID, error) {
			close(shownCh)
			return domain.NotificationID(1), nil
		})
	notifier.EXPECT().Close().Return(errors.New("bus already closed"))

	shut := newFakeShutdowner()
	e := NewEngine(zap.NewNop(), mon, player, renderer, notifier, shut)
	require.NoError(t, e.Start(context.Background()))
	<-shownCh

	err := e.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus already closed")
	assert.True(t, mon.stopped)

	select {
	case <-shut.called:
		t.Fatal("Stop must not request another shutdown")
	default:
	}
}
