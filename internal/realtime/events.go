package realtime

import "github.com/google/uuid"

// Kind discriminates the realtime event variants. Consumers switch on it
// instead of sniffing payload shapes.
type Kind string

const (
	// KindNotification targets a single user's notification dropdown.
	KindNotification Kind = "new_notification"
	// KindSupportMessage is scoped to a ticket room.
	KindSupportMessage Kind = "new_support_message"
	// KindTicketStatus announces a support ticket status change.
	KindTicketStatus Kind = "support_ticket_status_changed"
	// KindSupportNotification nudges a ticket participant outside the room.
	KindSupportNotification Kind = "support_notification"
	// KindSystemUpdate broadcasts a "what's new" entry to everyone.
	KindSystemUpdate Kind = "new_system_update"
	// KindDataRefresh tells every subscribed view to refetch its lists.
	KindDataRefresh Kind = "data_refresh"
)

// Event is one realtime message. UserID, when set, restricts delivery to
// that user's connections; TicketID, when set, restricts delivery to
// connections that joined the ticket room. Unscoped events broadcast.
type Event struct {
	Kind     Kind        `json:"kind"`
	UserID   *uuid.UUID  `json:"-"`
	TicketID *uuid.UUID  `json:"ticket_id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// NotificationEvent is the payload of KindNotification.
type NotificationEvent struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	NotifyKind     string     `json:"notify_kind"`
	Message        string     `json:"message"`
	LinkID         *uuid.UUID `json:"link_id,omitempty"`
}

// SupportMessageEvent is the payload of KindSupportMessage.
type SupportMessageEvent struct {
	MessageID uuid.UUID `json:"message_id"`
	TicketID  uuid.UUID `json:"ticket_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
}

// TicketStatusEvent is the payload of KindTicketStatus.
type TicketStatusEvent struct {
	TicketID uuid.UUID `json:"ticket_id"`
	Status   string    `json:"status"`
}

// SystemUpdateEvent is the payload of KindSystemUpdate.
type SystemUpdateEvent struct {
	UpdateID uuid.UUID `json:"update_id"`
	Version  string    `json:"version"`
	Title    string    `json:"title"`
}

// RefreshEvent is the payload of KindDataRefresh. Seq increases with
// every signal so late subscribers can detect missed refreshes.
type RefreshEvent struct {
	Seq   uint64 `json:"seq"`
	Scope string `json:"scope,omitempty"`
}
