package httpapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"media-scribe/internal/logger"
	"media-scribe/internal/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsBuffer     = 64
)

func newUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	anyOrigin := false
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return anyOrigin || origin == "" || allowed[origin]
		},
	}
}

// eventStream upgrades to a websocket and streams session events as JSON.
// Events after "since" are replayed first. A client that falls behind is
// disconnected and should reconnect with the last seq it saw.
func (h *Handler) eventStream(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r)
	if err != nil {
		http.Error(w, "since must be an integer", http.StatusBadRequest)
		return
	}
	log := logger.FromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()
	defer h.backend.Metrics().WSClientConnected()()

	events := h.backend.Session().Events()
	queue := make(chan session.Event, wsBuffer)
	overflow := make(chan struct{})
	var overflowOnce sync.Once
	unsubscribe := events.Subscribe(func(e session.Event) {
		select {
		case queue <- e:
		default:
			overflowOnce.Do(func() { close(overflow) })
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	last := since
	for _, e := range events.Since(since) {
		if err := writeEvent(conn, e); err != nil {
			return
		}
		last = e.Seq
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e := <-queue:
			if e.Seq <= last {
				continue
			}
			if err := writeEvent(conn, e); err != nil {
				log.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}
			last = e.Seq
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-overflow:
			log.Warn("websocket client too slow; closing", slog.Int64("last_seq", last))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "reconnect with since"),
				time.Now().Add(wsWriteWait))
			return
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, e session.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(e)
}
