package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"freequilt/internal/app/directory"
	"freequilt/internal/app/downloads"
	"freequilt/internal/app/notify"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/view"
	"freequilt/internal/pkg/errs"
	"freequilt/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the tab.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the tab.
	maxMessageSize = 4096

	// MaxSearchTermBytes caps the search input.
	MaxSearchTermBytes = 200

	// WsCloseCodeSessionKicked is the close code sent to a tab whose id was
	// taken over by a newer connection.
	WsCloseCodeSessionKicked = 4001
)

// Origin is the write origin recorded for tab tabID of namespace.
func Origin(namespace, tabID string) string {
	return namespace + "/" + tabID
}

// Tab is one open page of a profile, connected over a WebSocket.
type Tab struct {
	// ID is chosen by the page and unique within its profile.
	ID        string
	Namespace string

	channel  *Channel
	conn     *websocket.Conn
	services *Services
	sync     *view.Synchronizer

	notifier  *notify.Notifier
	debouncer *notify.Debouncer

	// send queues encoded messages for WritePump.
	send chan []byte

	// changes queues storage events for syncLoop.
	changes chan prefstore.Change

	ctx    context.Context
	cancel context.CancelFunc

	closed      chan struct{}
	closeOnce   sync.Once
	closeCode   int
	closeReason string

	logger zerolog.Logger
}

func newTab(conn *websocket.Conn, namespace, tabID string, page view.Page, services *Services) *Tab {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = prefstore.WithOrigin(ctx, Origin(namespace, tabID))

	return &Tab{
		ID:        tabID,
		Namespace: namespace,
		conn:      conn,
		services:  services,
		sync:      view.NewSynchronizer(namespace, page, services.Directory, services.Catalog, services.Store),
		notifier:  notify.NewNotifier(services.Timings, services.AfterFunc),
		debouncer: notify.NewDebouncer(services.Debounce, services.AfterFunc),
		send:      make(chan []byte, 256),
		changes:   make(chan prefstore.Change, changeBuffer),
		ctx:       ctx,
		cancel:    cancel,
		closed:    make(chan struct{}),
		closeCode: websocket.CloseNormalClosure,
		logger: logx.Logger().With().
			Str("namespace", namespace).
			Str("tab_id", tabID).
			Str("page", page.Name()).
			Logger(),
	}
}

func (t *Tab) origin() string {
	return Origin(t.Namespace, t.ID)
}

// close stops the tab. WritePump sends a close frame with code and reason.
func (t *Tab) close(code int, reason string) {
	t.closeOnce.Do(func() {
		t.closeCode = code
		t.closeReason = reason
		close(t.closed)
		t.cancel()
		t.debouncer.Stop()
		t.notifier.Stop()
	})
}

// kick closes the tab because another connection took over its id.
func (t *Tab) kick() {
	reason := errs.NewError(errs.ErrSessionReplaced).Message
	t.logger.Warn().
		Int("close_code", WsCloseCodeSessionKicked).
		Str("reason", reason).
		Msg("Closing replaced tab connection.")
	t.close(WsCloseCodeSessionKicked, reason)
}

// enqueue hands a storage change to syncLoop without blocking.
func (t *Tab) enqueue(change prefstore.Change) {
	select {
	case <-t.closed:
	case t.changes <- change:
	default:
		t.logger.Warn().Str("key", change.Key).Msg("Tab change queue full, dropping storage event")
	}
}

// ReadPump reads messages from the connection until it fails, then detaches the tab.
func (t *Tab) ReadPump() {
	defer t.cleanupOnDisconnect()

	t.conn.SetReadLimit(maxMessageSize)

	if err := t.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		t.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.logger.Info().Err(err).Msg("Error reading message (tab close/going away)")
			}
			return
		}

		t.processInboundMessage(data)
	}
}

func (t *Tab) cleanupOnDisconnect() {
	t.logger.Info().Msg("Tab connection cleanup starting.")

	if t.channel != nil {
		t.channel.leave(t)
	}
	t.close(websocket.CloseNormalClosure, "")

	if err := t.conn.Close(); err != nil {
		t.logger.Debug().Err(err).Msg("Tab connection close error")
	}
}

// WritePump writes queued messages and keep-alive pings to the connection.
func (t *Tab) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := t.conn.Close(); err != nil {
			t.logger.Debug().Err(err).Msg("Tab connection close error in WritePump")
		}
	}()

	for {
		select {
		case message := <-t.send:
			if !t.write(websocket.TextMessage, message) {
				return
			}

		case <-ticker.C:
			if !t.write(websocket.PingMessage, nil) {
				return
			}

		case <-t.closed:
			t.write(websocket.CloseMessage, websocket.FormatCloseMessage(t.closeCode, t.closeReason))
			return
		}
	}
}

func (t *Tab) write(messageType int, data []byte) bool {
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		t.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := t.conn.WriteMessage(messageType, data); err != nil {
		t.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing message")
		return false
	}

	return true
}

// syncLoop sends INIT, then relays storage changes followed by the patch
// they imply for this tab.
func (t *Tab) syncLoop() {
	state, err := t.sync.Snapshot(t.ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to build initial state")
		t.sendError(err)
	} else {
		t.sendMessage(TypeInit, InitPayload{
			TabID: t.ID,
			Page:  t.sync.Page().Name(),
			State: state,
		})
	}

	for {
		select {
		case <-t.closed:
			return
		case change := <-t.changes:
			t.sendMessage(TypeStorage, t.redact(change))
			t.resync(change)
		}
	}
}

// redact strips credentials from user collection writes.
func (t *Tab) redact(change prefstore.Change) prefstore.Change {
	if change.Namespace != prefstore.SiteNamespace || change.Key != prefstore.KeyUsers || change.Deleted() {
		return change
	}

	public, err := directory.PublicCollection(change.Value)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Unreadable user collection in storage event")
		change.Value = nil
		return change
	}
	change.Value = public
	return change
}

// resync recomputes the surfaces a storage change can affect.
func (t *Tab) resync(change prefstore.Change) {
	var (
		patch view.Patch
		err   error
	)

	switch {
	case change.Namespace == prefstore.SiteNamespace && change.Key == prefstore.KeyUsers,
		change.Namespace == t.Namespace && change.Key == prefstore.KeyCurrentUser:
		patch, err = t.sync.SyncSession(t.ctx)
	case change.Namespace == t.Namespace && (change.Key == prefstore.KeyTheme || change.Key == prefstore.KeyDirection):
		patch, err = t.sync.SyncPreferences(t.ctx)
	default:
		return
	}

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			t.logger.Error().Err(err).Str("key", change.Key).Msg("Resync failed")
		}
		return
	}

	t.sendPatch(patch)
}

// sendMessage queues a message without blocking. Messages for a closed tab are dropped.
func (t *Tab) sendMessage(msgType MessageType, payload any) bool {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to build message")
		return false
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.logger.Error().Err(err).Msg("Error marshaling message for tab")
		return false
	}

	select {
	case <-t.closed:
		return false
	default:
	}

	select {
	case t.send <- data:
		return true
	default:
		t.logger.Warn().Int("queue_len", len(t.send)).Msg("Tab send channel full, dropping message")
		return false
	}
}

func (t *Tab) sendPatch(patch view.Patch) {
	if patch.Empty() {
		return
	}
	t.sendMessage(TypePatch, patch)
}

func (t *Tab) notify(note notify.Notification) {
	t.notifier.Show(func(e notify.Event) {
		t.sendMessage(TypeNotification, e)
	}, note)
}

// sendError reports err to the tab as an ERROR message.
func (t *Tab) sendError(err error) {
	customErr := errs.From(err)
	payload := ErrorPayload{Code: customErr.Code, Message: customErr.Message}
	if len(customErr.Fields) > 0 {
		payload.Fields = customErr.Fields.Map()
	}
	t.sendMessage(TypeError, payload)
}

func (t *Tab) processInboundMessage(data []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.logger.Warn().Err(err).Msg("Tab sent invalid JSON")
		t.sendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch msg.Type {
	case TypeSearch:
		var p SearchPayload
		if !t.decode(msg.Payload, &p) {
			return
		}
		if len(p.Term) > MaxSearchTermBytes {
			t.sendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		t.debouncer.Trigger(func() {
			t.sendPatch(t.sync.Search(p.Term))
		})

	case TypeFilter:
		var p FilterPayload
		if !t.decode(msg.Payload, &p) {
			return
		}
		t.sendPatch(t.sync.Filter(p.Category))

	case TypeFavoriteToggle:
		var p PatternPayload
		if !t.decode(msg.Payload, &p) {
			return
		}
		t.handleFavorite(p.PatternID)

	case TypeModalOpen:
		var p PatternPayload
		if !t.decode(msg.Payload, &p) {
			return
		}
		t.sendPatch(t.sync.OpenPattern(p.PatternID))

	case TypeModalClose:
		var p DisclosurePayload
		if !t.decode(msg.Payload, &p) {
			return
		}
		if p.Event == "" {
			p.Event = view.EventClose
		}
		if !p.Event.Valid() {
			t.sendError(errs.NewError(errs.ErrInvalidParams))
			return
		}
		t.sendPatch(t.sync.CloseModal(p.Event))

	case TypeMenuToggle, TypeMenuClose:
		var p DisclosurePayload
		if !t.decode(msg.Payload, &p) {
			return
		}
		event := view.EventTrigger
		if msg.Type == TypeMenuClose {
			event = p.Event
			if event == "" {
				event = view.EventClose
			}
			if !event.Valid() || event == view.EventTrigger {
				t.sendError(errs.NewError(errs.ErrInvalidParams))
				return
			}
		}
		t.sendPatch(t.sync.Menu(p.Menu, event))

	case TypeThemeToggle:
		patch, err := t.sync.ToggleTheme(t.ctx)
		t.reply(patch, err)

	case TypeDirectionToggle:
		patch, err := t.sync.ToggleDirection(t.ctx)
		t.reply(patch, err)

	case TypeDownload:
		var p PatternPayload
		if !t.decode(msg.Payload, &p) {
			return
		}
		// The modal's download button names no pattern.
		if p.PatternID == "" {
			p.PatternID = t.sync.ModalPattern()
		}
		t.handleDownload(p.PatternID)

	case TypeResync:
		patch, err := t.sync.Snapshot(t.ctx)
		t.reply(patch, err)

	default:
		t.logger.Warn().Str("msg_type", string(msg.Type)).Msg("Tab sent unsupported message type")
		t.sendError(errs.NewError(errs.ErrInvalidParams))
	}
}

func (t *Tab) decode(raw json.RawMessage, dst any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.logger.Warn().Err(err).Msg("Tab sent invalid payload")
		t.sendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return false
	}
	return true
}

func (t *Tab) reply(patch view.Patch, err error) {
	if err != nil {
		t.sendError(err)
		return
	}
	t.sendPatch(patch)
}

func (t *Tab) handleFavorite(patternID string) {
	patch, result, err := t.sync.ToggleFavorite(t.ctx, patternID)
	if errors.Is(err, directory.ErrNoSession) {
		t.sendError(errs.NewError(errs.ErrUnauthorized))
		return
	}
	if err != nil {
		t.sendError(err)
		return
	}

	t.sendPatch(patch)
	if note, ok := view.FavoriteNotice(result); ok {
		t.notify(note)
	}
}

func (t *Tab) handleDownload(patternID string) {
	if _, ok := t.services.Catalog.Get(patternID); !ok {
		t.logger.Debug().Str("pattern_id", patternID).Msg("Ignoring download of unknown pattern")
		return
	}

	ticket, err := t.services.Downloads.Download(t.ctx, t.Namespace, patternID)
	if err != nil {
		t.sendError(err)
		return
	}

	t.notify(downloads.Started(ticket.Title))

	ready := *ticket
	ready.StartAfter = 0
	t.services.AfterFunc(t.services.DownloadDelay, func() {
		t.sendMessage(TypeDownloadReady, ready)
	})
}
