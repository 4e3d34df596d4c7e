package hub

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/downloads"
	"freequilt/internal/app/notify"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/view"
	"freequilt/internal/pkg/logx"
)

// ChannelInactivityTimeout is how long a profile channel outlives its last tab.
const ChannelInactivityTimeout = 5 * time.Minute

// Downloader records pattern downloads.
type Downloader interface {
	Download(ctx context.Context, namespace, patternID string) (*downloads.Ticket, error)
}

// Services are the collaborators tabs act on.
type Services struct {
	Store     prefstore.Store
	Directory view.Directory
	Catalog   *catalog.Index
	Pages     view.Pages
	Downloads Downloader

	// Timings of tab notifications. Zero means notify.DefaultTimings.
	Timings notify.Timings
	// Debounce delays search input. Zero runs searches at once.
	Debounce time.Duration
	// DownloadDelay is the wait before a DOWNLOAD message. Zero sends it at once.
	DownloadDelay time.Duration
	// IdleTimeout overrides ChannelInactivityTimeout.
	IdleTimeout time.Duration
	// AfterFunc schedules delayed work. Nil uses time.AfterFunc.
	AfterFunc notify.AfterFunc
}

// Manager keeps one Channel per profile namespace.
type Manager struct {
	services Services

	// channels stores the live channels keyed by namespace.
	channels map[string]*Channel

	// mu protects concurrent access to the channels map.
	mu sync.RWMutex

	// cleanup receives channels whose Run loop ended.
	cleanup chan *Channel

	// running counts channel Run loops; wg the cleanup loop.
	running sync.WaitGroup
	wg      sync.WaitGroup

	shutdownOnce sync.Once

	logger zerolog.Logger
}

// NewManager constructs a Manager and starts its cleanup loop.
func NewManager(services Services) *Manager {
	if services.Timings == (notify.Timings{}) {
		services.Timings = notify.DefaultTimings
	}
	if services.IdleTimeout <= 0 {
		services.IdleTimeout = ChannelInactivityTimeout
	}
	if services.AfterFunc == nil {
		services.AfterFunc = func(d time.Duration, f func()) notify.Timer {
			return time.AfterFunc(d, f)
		}
	}

	m := &Manager{
		services: services,
		channels: make(map[string]*Channel),
		cleanup:  make(chan *Channel, 64),
		logger:   logx.Component("hub"),
	}

	m.wg.Add(1)
	go m.runCleanupLoop()

	return m
}

func (m *Manager) runCleanupLoop() {
	defer m.wg.Done()

	m.logger.Info().Msg("Cleanup loop started.")

	for ch := range m.cleanup {
		m.deleteChannel(ch)
	}

	m.logger.Info().Msg("Cleanup loop stopped.")
}

// deleteChannel removes ch unless it was already replaced.
func (m *Manager) deleteChannel(ch *Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.channels[ch.Namespace]; ok && current == ch {
		delete(m.channels, ch.Namespace)
		m.logger.Info().Str("namespace", ch.Namespace).Msg("Channel removed.")
	}
}

// channel returns the live channel of namespace, starting one when needed.
// It returns nil after Shutdown.
func (m *Manager) channel(namespace string) *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.channels == nil {
		return nil
	}

	if ch, ok := m.channels[namespace]; ok {
		return ch
	}

	ch := newChannel(namespace, m.services.Store.Feed(), m.services.IdleTimeout, m.cleanup)
	m.channels[namespace] = ch

	m.running.Add(1)
	go func() {
		defer m.running.Done()
		ch.Run()
	}()

	m.logger.Info().Str("namespace", namespace).Msg("New channel started.")
	return ch
}

// Len returns the number of live channels.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels)
}

// Serve attaches conn as tab tabID of the profile namespace showing page and
// blocks until the connection ends.
func (m *Manager) Serve(conn *websocket.Conn, namespace, tabID, page string) {
	tab := newTab(conn, namespace, tabID, m.services.Pages.Lookup(page), &m.services)

	for {
		ch := m.channel(namespace)
		if ch == nil {
			tab.close(websocket.CloseGoingAway, "server shutting down")
			tab.conn.Close()
			return
		}
		if ch.join(tab) {
			tab.channel = ch
			break
		}
		// The channel stopped between lookup and registration.
		m.deleteChannel(ch)
	}

	go tab.WritePump()
	go tab.syncLoop()

	tab.ReadPump()
}

// Shutdown stops every channel, closing their tabs, and waits for the loops
// to exit. Later calls do nothing.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(m.shutdown)
}

func (m *Manager) shutdown() {
	m.logger.Info().Msg("Shutting down hub...")

	m.mu.Lock()
	for _, ch := range m.channels {
		ch.Stop()
	}
	m.channels = nil
	m.mu.Unlock()

	m.running.Wait()
	close(m.cleanup)
	m.wg.Wait()

	m.logger.Info().Msg("Hub shutdown complete.")
}
