package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"freequilt/internal/app/prefstore"
	"freequilt/internal/pkg/logx"
)

const changeBuffer = 256

// Channel relays the preference changes of one profile to its open tabs.
type Channel struct {
	// Namespace is the profile namespace served by the channel.
	Namespace string

	// tabs are the connected tabs keyed by tab id. Owned by Run.
	tabs map[string]*Tab

	register   chan *Tab
	unregister chan *Tab

	// changes of the profile and of the shared site namespace.
	sub *prefstore.Subscription

	cleanup chan<- *Channel

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	idleTimeout time.Duration

	logger zerolog.Logger
}

func newChannel(namespace string, feed *prefstore.Feed, idleTimeout time.Duration, cleanup chan<- *Channel) *Channel {
	return &Channel{
		Namespace:   namespace,
		tabs:        make(map[string]*Tab),
		register:    make(chan *Tab),
		unregister:  make(chan *Tab),
		sub:         feed.Subscribe(changeBuffer, namespace, prefstore.SiteNamespace),
		cleanup:     cleanup,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		logger:      logx.Logger().With().Str("namespace", namespace).Logger(),
	}
}

// Stop ends the Run loop. It is safe to call more than once.
func (c *Channel) Stop() {
	c.stopOnce.Do(func() {
		c.logger.Info().Msg("Received stop signal. Stopping channel immediately.")
		close(c.stop)
	})
}

// join hands tab to the Run loop. It reports false when the channel
// has already stopped.
func (c *Channel) join(tab *Tab) bool {
	select {
	case c.register <- tab:
		return true
	case <-c.done:
		return false
	}
}

// leave removes tab, unless the channel is gone already.
func (c *Channel) leave(tab *Tab) {
	select {
	case c.unregister <- tab:
	case <-c.done:
	}
}

// Run is the event loop of the channel: tab registration, change fan-out
// and the inactivity shutdown.
func (c *Channel) Run() {
	idle := time.NewTimer(c.idleTimeout)

	defer func() {
		idle.Stop()
		c.sub.Close()
		close(c.done)

		for _, tab := range c.tabs {
			tab.close(websocket.CloseGoingAway, "channel closed")
		}
		c.tabs = nil

		select {
		case c.cleanup <- c:
		default:
			c.logger.Warn().Msg("Manager cleanup channel full. Skipping cleanup notification.")
		}

		c.logger.Info().Msg("Channel Run loop finished.")
	}()

	for {
		select {
		case tab := <-c.register:
			if existing, ok := c.tabs[tab.ID]; ok {
				c.logger.Warn().
					Str("tab_id", tab.ID).
					Msg("Tab id already connected. Closing old connection for replacement.")
				existing.kick()
			}

			idle.Stop()
			c.tabs[tab.ID] = tab

			c.logger.Info().
				Str("tab_id", tab.ID).
				Int("total_tabs", len(c.tabs)).
				Msg("Tab joined channel.")

		case tab := <-c.unregister:
			if current, ok := c.tabs[tab.ID]; ok && current == tab {
				delete(c.tabs, tab.ID)
				c.logger.Info().
					Str("tab_id", tab.ID).
					Int("total_tabs", len(c.tabs)).
					Msg("Tab left channel.")
			} else {
				c.logger.Debug().Str("tab_id", tab.ID).Msg("Ignoring unregister for stale tab.")
			}

			if len(c.tabs) == 0 {
				idle.Reset(c.idleTimeout)
			}

		case change, ok := <-c.sub.C():
			if !ok {
				return
			}
			for _, tab := range c.tabs {
				if tab.origin() != change.Origin {
					tab.enqueue(change)
				}
			}

		case <-idle.C:
			c.logger.Info().Msgf("Channel inactivity timeout (%s) reached.", c.idleTimeout)
			return

		case <-c.stop:
			return
		}
	}
}
