// Package realtime implements the shared push channel of the CRM as a
// Server-Sent Events hub, plus the reconciliation helpers that pair push
// delivery with polling (UnreadTracker) and guard racing refetches
// (RefreshGuard).
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// subscriber is one client connection.
type subscriber struct {
	ch     chan []byte
	userID uuid.UUID
}

type roomReq struct {
	userID   uuid.UUID
	ticketID uuid.UUID
	join     bool
}

// Hub manages SSE client connections and routes events to them.
//
// Concurrency model: a single internal event loop (goroutine) owns all
// mutable state (subscribers + ticket-room membership). Public methods
// talk to the loop through channels, so no mutexes are required. There
// is one Hub per process, created at startup and injected into
// consumers; it is closed with Close on shutdown.
type Hub struct {
	clientBuffer int

	subscribeCh   chan *subscriber
	unsubscribeCh chan chan []byte
	roomCh        chan roomReq
	publishCh     chan Event
	countReqCh    chan chan int

	refreshSeq uint64

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewHub creates a hub with the given per-client buffer size.
func NewHub(clientBuffer int) *Hub {
	if clientBuffer <= 0 {
		clientBuffer = 64
	}

	h := &Hub{
		clientBuffer:  clientBuffer,
		subscribeCh:   make(chan *subscriber),
		unsubscribeCh: make(chan chan []byte),
		roomCh:        make(chan roomReq),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)

	subs := make(map[chan []byte]*subscriber)
	// rooms maps ticket id -> set of member user ids. A user joins a room
	// when opening the ticket and leaves it on close.
	rooms := make(map[uuid.UUID]map[uuid.UUID]struct{})

	deliver := func(event Event) {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Str("kind", string(event.Kind)).Msg("Failed to marshal realtime event")
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Kind, payload))

		var members map[uuid.UUID]struct{}
		if event.TicketID != nil {
			members = rooms[*event.TicketID]
		}

		for ch, sub := range subs {
			if event.UserID != nil && sub.userID != *event.UserID {
				continue
			}
			if event.TicketID != nil {
				if _, in := members[sub.userID]; !in {
					continue
				}
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; drop rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-h.stopCh:
			for ch := range subs {
				close(ch)
			}
			return

		case sub := <-h.subscribeCh:
			subs[sub.ch] = sub

		case ch := <-h.unsubscribeCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case req := <-h.roomCh:
			if req.join {
				members, ok := rooms[req.ticketID]
				if !ok {
					members = make(map[uuid.UUID]struct{})
					rooms[req.ticketID] = members
				}
				members[req.userID] = struct{}{}
			} else {
				if members, ok := rooms[req.ticketID]; ok {
					delete(members, req.userID)
					if len(members) == 0 {
						delete(rooms, req.ticketID)
					}
				}
			}

		case event := <-h.publishCh:
			deliver(event)

		case resp := <-h.countReqCh:
			resp <- len(subs)
		}
	}
}

// Close stops the loop and closes every client channel.
func (h *Hub) Close() {
	if h.closed.CompareAndSwap(false, true) {
		close(h.stopCh)
	}
	<-h.stopped
}

// Subscribe registers a connection for the given user and returns its
// channel. The caller must pair it with Unsubscribe on teardown.
func (h *Hub) Subscribe(userID uuid.UUID) chan []byte {
	ch := make(chan []byte, h.clientBuffer)
	if h.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case h.subscribeCh <- &subscriber{ch: ch, userID: userID}:
	case <-h.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a connection and closes its channel.
func (h *Hub) Unsubscribe(ch chan []byte) {
	if h.closed.Load() {
		return
	}
	select {
	case h.unsubscribeCh <- ch:
	case <-h.stopped:
	}
}

// JoinTicket adds the user to a ticket room. Ticket-scoped messages are
// only delivered to room members.
func (h *Hub) JoinTicket(userID, ticketID uuid.UUID) {
	h.room(roomReq{userID: userID, ticketID: ticketID, join: true})
}

// LeaveTicket removes the user from a ticket room.
func (h *Hub) LeaveTicket(userID, ticketID uuid.UUID) {
	h.room(roomReq{userID: userID, ticketID: ticketID, join: false})
}

func (h *Hub) room(req roomReq) {
	if h.closed.Load() {
		return
	}
	select {
	case h.roomCh <- req:
	case <-h.stopped:
	}
}

// Publish routes an event to matching connections.
func (h *Hub) Publish(event Event) {
	if h.closed.Load() {
		return
	}
	select {
	case h.publishCh <- event:
	case <-h.stopped:
	}
}

// PublishRefresh broadcasts the shared data-refresh signal. Mutating
// services call it after a successful write instead of patching any
// local view of the data.
func (h *Hub) PublishRefresh(scope string) {
	seq := atomic.AddUint64(&h.refreshSeq, 1)
	h.Publish(Event{Kind: KindDataRefresh, Data: RefreshEvent{Seq: seq, Scope: scope}})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	if h.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case h.countReqCh <- resp:
	case <-h.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-h.stopped:
		return 0
	}
}

// ServeHTTP streams events to one authenticated connection until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.Subscribe(userID)
	defer h.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
