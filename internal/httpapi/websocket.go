package httpapi

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleStream upgrades GET /api/stream to a websocket and pushes order-book
// snapshots as they are produced by the feed. An optional "symbol" query
// parameter filters the stream to one symbol.
func (s *DashboardServer) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeError(w, http.StatusNotFound, "order-book feed not running")
		return
	}
	symbol := r.URL.Query().Get("symbol")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	id, events := s.feed.Subscribe(64)
	defer s.feed.Unsubscribe(id)

	// Reads are discarded; their only purpose is detecting a closed peer.
	readCtx := conn.CloseRead(r.Context())

	for {
		select {
		case <-readCtx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if symbol != "" && ev.Symbol != symbol {
				continue
			}
			msg := StreamMessage{Symbol: ev.Symbol, Snapshot: ev.Snapshot}
			if err := s.writeStreamMessage(readCtx, conn, msg); err != nil {
				return
			}
		}
	}
}

func (s *DashboardServer) writeStreamMessage(ctx context.Context, conn *websocket.Conn, msg StreamMessage) error {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		if ctx.Err() == nil {
			s.log.Debug("websocket write failed", "error", err)
		}
		return err
	}
	return nil
}
