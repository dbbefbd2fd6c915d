package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Role identifies what a user is allowed to do. Levels are ordered so
// that a numeric comparison expresses "at least".
type Role int

const (
	RoleOperator Role = iota + 1
	RoleManager
	RoleAdmin
)

// User represents a signed-in CRM user
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null;uniqueIndex" json:"email"`
	Token     string         `gorm:"not null;uniqueIndex" json:"-"`
	Role      Role           `gorm:"not null;default:1" json:"role"`
	PhotoID   *uuid.UUID     `gorm:"type:uuid" json:"photo_id"`
	LastSeen  *time.Time     `json:"last_seen"`
}

// Service order status values. The Portuguese labels are the domain
// vocabulary used by dispatch operators and are stored verbatim.
const (
	OrderQueued     = "Na Fila"
	OrderScheduled  = "Agendado"
	OrderInProgress = "Em Andamento"
	OrderDone       = "Concluído"
	OrderCanceled   = "Cancelado"
	OrderExcluded   = "Lançamento Excluído"
)

// ServiceOrder represents one dispatched tow/roadside job
type ServiceOrder struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Status      string         `gorm:"not null;default:'Na Fila';index" json:"status"`
	ScheduledAt *time.Time     `json:"scheduled_at"`
	ClientName  string         `gorm:"not null" json:"client_name"`
	ClientPhone string         `json:"client_phone"`
	DriverID    *uuid.UUID     `gorm:"type:uuid" json:"driver_id"`
	Vehicle     string         `json:"vehicle"`
	Plate       string         `json:"plate"`
	Location    string         `gorm:"not null" json:"location"`
	Description string         `gorm:"type:text" json:"description"`
	ValueCents  int64          `gorm:"not null;default:0" json:"value_cents"`
	BilledAt    *time.Time     `json:"billed_at"`
	CreatedBy   *uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	Notes       []OrderNote    `gorm:"foreignKey:OrderID" json:"notes,omitempty"`
	Driver      *User          `gorm:"foreignKey:DriverID" json:"-"`
}

// Note type values
const (
	NoteTypeText       = "text"
	NoteTypeAttachment = "attachment"
)

// OrderNote is an append-only note on a service order
type OrderNote struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	OrderID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	AuthorID     uuid.UUID   `gorm:"type:uuid;not null" json:"author_id"`
	Type         string      `gorm:"not null;default:'text'" json:"type"`
	Text         string      `gorm:"type:text" json:"text"`
	AttachmentID *uuid.UUID  `gorm:"type:uuid" json:"attachment_id"`
	Author       *User       `gorm:"foreignKey:AuthorID" json:"-"`
	Attachment   *Attachment `gorm:"foreignKey:AttachmentID" json:"attachment,omitempty"`
}

// Attachment owner types
const (
	OwnerOrderNote      = "order_note"
	OwnerArticle        = "knowledge_article"
	OwnerSupportMessage = "support_message"
	OwnerUserPhoto      = "user_photo"
)

// Attachment holds file metadata; the payload lives in the blob store
// under StorageKey.
type Attachment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	FileName   string     `gorm:"not null" json:"file_name"`
	MimeType   string     `gorm:"not null" json:"mime_type"`
	SizeBytes  int64      `gorm:"not null" json:"size_bytes"`
	OwnerType  string     `gorm:"not null;index:idx_attachment_owner" json:"owner_type"`
	OwnerID    *uuid.UUID `gorm:"type:uuid;index:idx_attachment_owner" json:"owner_id"`
	StorageKey string     `gorm:"not null;uniqueIndex" json:"-"`
	UploadedBy uuid.UUID  `gorm:"type:uuid;not null" json:"uploaded_by"`
}

// Knowledge article review status values
const (
	ArticleDraft    = "Rascunho"
	ArticlePending  = "Pendente"
	ArticleApproved = "Aprovado"
	ArticleRejected = "Rejeitado"
)

// KnowledgeArticle is a knowledge base entry with a review workflow
type KnowledgeArticle struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	KBCode          string         `gorm:"not null;uniqueIndex" json:"kb_code"`
	Title           string         `gorm:"not null" json:"title"`
	Category        string         `gorm:"index" json:"category"`
	Content         string         `gorm:"type:text" json:"content"`
	Tags            string         `json:"tags"`       // comma-separated
	Visibility      string         `json:"visibility"` // comma-separated role names, empty = all
	Status          string         `gorm:"not null;default:'Rascunho';index" json:"status"`
	CreatorID       uuid.UUID      `gorm:"type:uuid;not null" json:"creator_id"`
	ApproverID      *uuid.UUID     `gorm:"type:uuid" json:"approver_id"`
	RejectionReason *string        `json:"rejection_reason"`
	Creator         *User          `gorm:"foreignKey:CreatorID" json:"-"`
	Approver        *User          `gorm:"foreignKey:ApproverID" json:"-"`
}

// Support ticket status values
const (
	TicketOpen            = "Aberto"
	TicketInAnalysis      = "Em Análise"
	TicketWaitingSupport  = "Aguardando Suporte"
	TicketWaitingCustomer = "Aguardando Cliente"
	TicketResolved        = "Resolvido"
	TicketClosed          = "Fechado"
)

// SupportTicket represents one support conversation
type SupportTicket struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	Subject     string           `gorm:"not null" json:"subject"`
	Priority    string           `gorm:"not null;default:'normal'" json:"priority"`
	Type        string           `json:"type"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory"`
	Status      string           `gorm:"not null;default:'Aberto';index" json:"status"`
	OpenedBy    uuid.UUID        `gorm:"type:uuid;not null;index" json:"opened_by"`
	Messages    []SupportMessage `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
}

// SupportMessage is one message in a ticket thread, append-only
type SupportMessage struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	TicketID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"ticket_id"`
	AuthorID     uuid.UUID   `gorm:"type:uuid;not null" json:"author_id"`
	Body         string      `gorm:"type:text" json:"body"`
	AttachmentID *uuid.UUID  `gorm:"type:uuid" json:"attachment_id"`
	Attachment   *Attachment `gorm:"foreignKey:AttachmentID" json:"attachment,omitempty"`
}

// Notification kinds drive the client icon and navigation target
const (
	NotifyOrderStatus  = "order_status"
	NotifyOrderDue     = "order_due"
	NotifySupport      = "support"
	NotifyArticle      = "knowledge"
	NotifySystemUpdate = "system_update"
	NotifyGMUD         = "gmud"
)

// Notification is a per-user pending notification
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      string     `gorm:"not null" json:"kind"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Read      bool       `gorm:"not null;default:false;index" json:"read"`
	LinkID    *uuid.UUID `gorm:"type:uuid" json:"link_id"`
}

// Announcement scopes
const (
	ScopeLocal  = "local"
	ScopeGlobal = "global"
)

// Announcement is a modal announcement shown inside an active window
type Announcement struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Title      string         `gorm:"not null" json:"title"`
	Body       string         `gorm:"type:text" json:"body"`
	Scope      string         `gorm:"not null;default:'local'" json:"scope"`
	TargetRole *Role          `json:"target_role"`
	StartsAt   time.Time      `json:"starts_at"`
	EndsAt     *time.Time     `json:"ends_at"`
	Active     bool           `gorm:"not null;default:true" json:"active"`
	CreatedBy  uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
}

// SystemUpdate is a "what's new" entry broadcast to every user
type SystemUpdate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Version   string    `gorm:"not null" json:"version"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
}

// RevenueEntry is the ledger entry created when an order completes.
// Billing marks it billed; deleting the order removes it.
type RevenueEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Description string     `json:"description"`
	Billed      bool       `gorm:"not null;default:false" json:"billed"`
	BilledAt    *time.Time `json:"billed_at"`
}

// License request status values
const (
	LicenseRequestOpen     = "open"
	LicenseRequestApproved = "approved"
	LicenseRequestDenied   = "denied"
)

// LicenseRequest asks for an increase in seat count
type LicenseRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null" json:"requester_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Reason      string    `gorm:"type:text" json:"reason"`
	Status      string    `gorm:"not null;default:'open'" json:"status"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&ServiceOrder{},
		&OrderNote{},
		&Attachment{},
		&KnowledgeArticle{},
		&SupportTicket{},
		&SupportMessage{},
		&Notification{},
		&Announcement{},
		&SystemUpdate{},
		&RevenueEntry{},
		&LicenseRequest{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
