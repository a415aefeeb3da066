package wshandler

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"

	"github.com/openrescue/sarcoord/internal/model"
)

type WebMessage struct {
	Typ   string                  `json:"type"`
	Entry *model.TimelineEntryDTO `json:"entry,omitempty"`
}

// JSONWsHandler streams one mission's timeline entries to a websocket
// client. Entries for other missions are dropped at the subscription filter.
type JSONWsHandler struct {
	log       *slog.Logger
	name      string
	missionID uint
	ws        *websocket.Conn
	ch        chan *WebMessage
	active    int32
}

func NewHandler(log *slog.Logger, name string, missionID uint, ws *websocket.Conn) *JSONWsHandler {
	return &JSONWsHandler{
		log:       log.With("client", name),
		name:      name,
		missionID: missionID,
		ws:        ws,
		ch:        make(chan *WebMessage, 10),
		active:    1,
	}
}

func (w *JSONWsHandler) IsActive() bool {
	return w != nil && atomic.LoadInt32(&w.active) == 1
}

func (w *JSONWsHandler) stop() {
	if atomic.CompareAndSwapInt32(&w.active, 1, 0) {
		close(w.ch)
		w.ws.Close()
	}
}

func (w *JSONWsHandler) writer() {
	for item := range w.ch {
		if !w.IsActive() {
			return
		}

		if item == nil {
			continue
		}

		_ = w.ws.WriteJSON(item)
	}
}

func (w *JSONWsHandler) reader() {
	defer w.stop()

	for {
		_, _, err := w.ws.ReadMessage()

		if err != nil {
			w.log.Debug("error on read", slog.Any("error", err))

			return
		}
	}
}

// SendEntry is the subscription callback. Returning false unsubscribes the
// handler from the fan-out.
func (w *JSONWsHandler) SendEntry(e *model.TimelineEntry) bool {
	if w == nil || !w.IsActive() {
		return false
	}

	if e == nil || e.MissionID != w.missionID {
		return true
	}

	select {
	case w.ch <- &WebMessage{Typ: "timeline", Entry: model.ToTimelineEntryDTO(e)}:
	default:
	}

	return true
}

func (w *JSONWsHandler) closehandler(code int, text string) error {
	w.log.Info(fmt.Sprintf("closed with code %d, msg %s", code, text))
	w.stop()

	return nil
}

func (w *JSONWsHandler) Listen() {
	w.log.Debug("ws start")
	w.ws.SetCloseHandler(w.closehandler)

	go w.writer()
	w.reader()
	w.log.Debug("ws stop")
}
