package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
)

// OrderRepository provides access to service orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.ServiceOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error)
	ListByStatus(ctx context.Context, status string) ([]models.ServiceOrder, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.ServiceOrder, error)
	Save(ctx context.Context, order *models.ServiceOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type orderRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db, readOnlyDB *gorm.DB) OrderRepository {
	return &orderRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *orderRepository) Create(ctx context.Context, order *models.ServiceOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := r.readOnlyDB.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order by ID")
	}
	return &order, nil
}

func (r *orderRepository) ListByStatus(ctx context.Context, status string) ([]models.ServiceOrder, error) {
	var orders []models.ServiceOrder
	q := r.readOnlyDB.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	return orders, nil
}

func (r *orderRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.ServiceOrder, error) {
	var orders []models.ServiceOrder
	err := r.readOnlyDB.WithContext(ctx).
		Where("status = ? AND scheduled_at BETWEEN ? AND ?", models.OrderScheduled, from, to).
		Order("scheduled_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list scheduled orders")
	}
	return orders, nil
}

func (r *orderRepository) Save(ctx context.Context, order *models.ServiceOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ServiceOrder{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete order")
	}
	if result.RowsAffected == 0 {
		return errors.New("no order deleted")
	}
	return nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.ServiceOrder{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders by status")
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// NoteRepository provides access to order notes.
type NoteRepository interface {
	Create(ctx context.Context, note *models.OrderNote) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderNote, error)
}

type noteRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db, readOnlyDB *gorm.DB) NoteRepository {
	return &noteRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *noteRepository) Create(ctx context.Context, note *models.OrderNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderNote, error) {
	var notes []models.OrderNote
	err := r.readOnlyDB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&notes).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list order notes")
	}
	return notes, nil
}

// AttachmentRepository provides access to attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]models.Attachment, error)
	SetOwner(ctx context.Context, id uuid.UUID, ownerType string, ownerID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db, readOnlyDB *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.readOnlyDB.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get attachment by ID")
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := r.readOnlyDB.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Find(&attachments).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list attachments")
	}
	return attachments, nil
}

func (r *attachmentRepository) SetOwner(ctx context.Context, id uuid.UUID, ownerType string, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"owner_type": ownerType, "owner_id": ownerID})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set attachment owner")
	}
	if result.RowsAffected == 0 {
		return errors.New("no attachment updated")
	}
	return nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Attachment{}, "id = ?", id).Error
}

// ArticleRepository provides access to knowledge articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.KnowledgeArticle) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeArticle, error)
	List(ctx context.Context, status, category string) ([]models.KnowledgeArticle, error)
	Save(ctx context.Context, article *models.KnowledgeArticle) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type articleRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db, readOnlyDB *gorm.DB) ArticleRepository {
	return &articleRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *articleRepository) Create(ctx context.Context, article *models.KnowledgeArticle) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *articleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeArticle, error) {
	var article models.KnowledgeArticle
	if err := r.readOnlyDB.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get article by ID")
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, status, category string) ([]models.KnowledgeArticle, error) {
	var articles []models.KnowledgeArticle
	q := r.readOnlyDB.WithContext(ctx).Order("updated_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&articles).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list articles")
	}
	return articles, nil
}

func (r *articleRepository) Save(ctx context.Context, article *models.KnowledgeArticle) error {
	return r.db.WithContext(ctx).Save(article).Error
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.KnowledgeArticle{}, "id = ?", id).Error
}

func (r *articleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.readOnlyDB.WithContext(ctx).Model(&models.KnowledgeArticle{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count articles")
	}
	return count, nil
}

// TicketRepository provides access to support tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	List(ctx context.Context, status string, openedBy *uuid.UUID) ([]models.SupportTicket, error)
	Save(ctx context.Context, ticket *models.SupportTicket) error
}

type ticketRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db, readOnlyDB *gorm.DB) TicketRepository {
	return &ticketRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.readOnlyDB.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Messages.Attachment").
		First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ticket by ID")
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, status string, openedBy *uuid.UUID) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	q := r.readOnlyDB.WithContext(ctx).Order("updated_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if openedBy != nil {
		q = q.Where("opened_by = ?", *openedBy)
	}
	if err := q.Find(&tickets).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list tickets")
	}
	return tickets, nil
}

func (r *ticketRepository) Save(ctx context.Context, ticket *models.SupportTicket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

// MessageRepository provides access to ticket messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.SupportMessage) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]models.SupportMessage, error)
}

type messageRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db, readOnlyDB *gorm.DB) MessageRepository {
	return &messageRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *messageRepository) Create(ctx context.Context, message *models.SupportMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]models.SupportMessage, error) {
	var messages []models.SupportMessage
	err := r.readOnlyDB.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ticket messages")
	}
	return messages, nil
}

// NotificationRepository provides access to notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type notificationRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db, readOnlyDB *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []models.Notification
	err := r.readOnlyDB.WithContext(ctx).
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending notifications")
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count unread notifications")
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark notification read")
	}
	if result.RowsAffected == 0 {
		return errors.New("no notification updated")
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// AnnouncementRepository provides access to announcements and updates.
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	ListActive(ctx context.Context, now time.Time, role models.Role) ([]models.Announcement, error)
	ListAll(ctx context.Context) ([]models.Announcement, error)
	Save(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type announcementRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db, readOnlyDB *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepository) ListActive(ctx context.Context, now time.Time, role models.Role) ([]models.Announcement, error) {
	var announcements []models.Announcement
	err := r.readOnlyDB.WithContext(ctx).
		Where("active = ? AND starts_at <= ? AND (ends_at IS NULL OR ends_at > ?)", true, now, now).
		Where("target_role IS NULL OR target_role = ?", role).
		Order("created_at DESC").
		Find(&announcements).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active announcements")
	}
	return announcements, nil
}

func (r *announcementRepository) ListAll(ctx context.Context) ([]models.Announcement, error) {
	var announcements []models.Announcement
	if err := r.readOnlyDB.WithContext(ctx).Order("created_at DESC").Find(&announcements).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list announcements")
	}
	return announcements, nil
}

func (r *announcementRepository) Save(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Save(announcement).Error
}

func (r *announcementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Announcement{}, "id = ?", id).Error
}

func (r *announcementRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Announcement{}).
		Where("active = ? AND ends_at IS NOT NULL AND ends_at <= ?", true, now).
		Update("active", false)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to deactivate expired announcements")
	}
	return result.RowsAffected, nil
}

// SystemUpdateRepository provides access to "what's new" entries.
type SystemUpdateRepository interface {
	Create(ctx context.Context, update *models.SystemUpdate) error
	ListSince(ctx context.Context, lastSeenID *uuid.UUID, limit int) ([]models.SystemUpdate, error)
}

type systemUpdateRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewSystemUpdateRepository creates a new system update repository
func NewSystemUpdateRepository(db, readOnlyDB *gorm.DB) SystemUpdateRepository {
	return &systemUpdateRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *systemUpdateRepository) Create(ctx context.Context, update *models.SystemUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *systemUpdateRepository) ListSince(ctx context.Context, lastSeenID *uuid.UUID, limit int) ([]models.SystemUpdate, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.readOnlyDB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if lastSeenID != nil {
		var lastSeen models.SystemUpdate
		if err := r.readOnlyDB.WithContext(ctx).First(&lastSeen, "id = ?", *lastSeenID).Error; err == nil {
			q = q.Where("created_at > ?", lastSeen.CreatedAt)
		}
	}

	var updates []models.SystemUpdate
	if err := q.Find(&updates).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list system updates")
	}
	return updates, nil
}

// RevenueRepository provides access to the revenue ledger.
type RevenueRepository interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.RevenueEntry, error)
	TotalBilled(ctx context.Context, since time.Time) (int64, error)
}

type revenueRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewRevenueRepository creates a new revenue repository
func NewRevenueRepository(db, readOnlyDB *gorm.DB) RevenueRepository {
	return &revenueRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *revenueRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.RevenueEntry, error) {
	var entry models.RevenueEntry
	if err := r.readOnlyDB.WithContext(ctx).First(&entry, "order_id = ?", orderID).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get revenue entry by order")
	}
	return &entry, nil
}

func (r *revenueRepository) TotalBilled(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.readOnlyDB.WithContext(ctx).
		Model(&models.RevenueEntry{}).
		Where("billed = ? AND billed_at >= ?", true, since).
		Select("coalesce(sum(amount_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum billed revenue")
	}
	return total, nil
}

// UserRepository provides access to users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByMinRole(ctx context.Context, role models.Role) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db, readOnlyDB *gorm.DB) UserRepository {
	return &userRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.readOnlyDB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get user by ID")
	}
	return &user, nil
}

func (r *userRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.readOnlyDB.WithContext(ctx).First(&user, "token = ?", token).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get user by token")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.readOnlyDB.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

func (r *userRepository) ListByMinRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.readOnlyDB.WithContext(ctx).Where("role >= ?", role).Order("name ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list users by role")
	}
	return users, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// LicenseRequestRepository provides access to license increase requests.
type LicenseRequestRepository interface {
	Create(ctx context.Context, request *models.LicenseRequest) error
	List(ctx context.Context, status string) ([]models.LicenseRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type licenseRequestRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewLicenseRequestRepository creates a new license request repository
func NewLicenseRequestRepository(db, readOnlyDB *gorm.DB) LicenseRequestRepository {
	return &licenseRequestRepository{db: db, readOnlyDB: readOnlyDB}
}

func (r *licenseRequestRepository) Create(ctx context.Context, request *models.LicenseRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *licenseRequestRepository) List(ctx context.Context, status string) ([]models.LicenseRequest, error) {
	var requests []models.LicenseRequest
	q := r.readOnlyDB.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list license requests")
	}
	return requests, nil
}

func (r *licenseRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.LicenseRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update license request")
	}
	if result.RowsAffected == 0 {
		return errors.New("no license request updated")
	}
	return nil
}
