package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/middleware"
	"github.com/doctrot/site-server-go/internal/service"
	"github.com/doctrot/site-server-go/internal/sse"
)

// EventsHandler streams dashboard notifications (new contact submissions) to
// the authenticated admin. The first event is "connected" with the current
// unread count.
type EventsHandler struct {
	broker    *sse.Broker
	contacts  *service.ContactService
	heartbeat time.Duration
}

func NewEventsHandler(broker *sse.Broker, contacts *service.ContactService) *EventsHandler {
	return &EventsHandler{
		broker:    broker,
		contacts:  contacts,
		heartbeat: sse.HeartbeatInterval,
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAdmin(r.Context()) == nil {
		httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, apperrors.Internal("Streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := h.broker.Subscribe(sse.TopicAdmin)
	defer h.broker.Unsubscribe(client)

	ctx := r.Context()
	stream := &eventStream{w: w, flusher: flusher}

	hello, err := sse.NewEvent("connected", map[string]any{"unreadContacts": h.unreadCount(ctx)})
	if err != nil || stream.send(hello) != nil {
		return
	}
	log.Debug().Str("topic", sse.TopicAdmin).Msg("sse stream opened")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done:
			return
		case event := <-client.Events:
			if err := stream.send(event); err != nil {
				log.Debug().Err(err).Msg("sse write failed")
				return
			}
		case <-heartbeat.C:
			if err := stream.comment("ping"); err != nil {
				return
			}
		}
	}
}

// unreadCount is best effort; the stream still opens when the store is down.
func (h *EventsHandler) unreadCount(ctx context.Context) int {
	if h.contacts == nil {
		return 0
	}
	n, err := h.contacts.CountUnread(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count unread contacts")
		return 0
	}
	return n
}

type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *eventStream) send(event sse.Event) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *eventStream) comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
