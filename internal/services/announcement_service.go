package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/utils"
)

// AnnouncementInput carries the editable fields of an announcement.
type AnnouncementInput struct {
	Title      string       `json:"title" validate:"required"`
	Body       string       `json:"body"`
	Scope      string       `json:"scope" validate:"omitempty,oneof=local global"`
	TargetRole *models.Role `json:"target_role"`
	StartsAt   time.Time    `json:"starts_at"`
	EndsAt     *time.Time   `json:"ends_at"`
}

// SystemUpdateInput carries a "what's new" entry.
type SystemUpdateInput struct {
	Version string `json:"version" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Body    string `json:"body"`
}

// AnnouncementService handles announcements, release notes and license
// requests.
type AnnouncementService struct {
	annRepo     repositories.AnnouncementRepository
	updateRepo  repositories.SystemUpdateRepository
	licenseRepo repositories.LicenseRequestRepository
	hub         *realtime.Hub
	now         func() time.Time
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(db, readOnlyDB *gorm.DB, hub *realtime.Hub) *AnnouncementService {
	return &AnnouncementService{
		annRepo:     repositories.NewAnnouncementRepository(db, readOnlyDB),
		updateRepo:  repositories.NewSystemUpdateRepository(db, readOnlyDB),
		licenseRepo: repositories.NewLicenseRequestRepository(db, readOnlyDB),
		hub:         hub,
		now:         time.Now,
	}
}

// CreateAnnouncement publishes an announcement window. Manager and above.
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, actor *models.User, input *AnnouncementInput) (*models.Announcement, error) {
	if actor.Role < models.RoleManager {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, errors.Wrap(err, "invalid announcement")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return nil, errors.New("announcement must end after it starts")
	}

	announcement := &models.Announcement{
		ID:         uuid.New(),
		Title:      input.Title,
		Body:       input.Body,
		Scope:      input.Scope,
		TargetRole: input.TargetRole,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		Active:     true,
		CreatedBy:  actor.ID,
	}
	if announcement.Scope == "" {
		announcement.Scope = models.ScopeLocal
	}
	if announcement.StartsAt.IsZero() {
		announcement.StartsAt = s.now()
	}

	if err := s.annRepo.Create(ctx, announcement); err != nil {
		return nil, errors.Wrap(err, "failed to create announcement")
	}

	if s.hub != nil {
		s.hub.PublishRefresh("announcements")
	}
	log.Info().Str("announcement_id", announcement.ID.String()).Str("scope", announcement.Scope).Msg("Announcement published")
	return announcement, nil
}

// ActiveFor returns the announcements currently inside their window for
// the given user.
func (s *AnnouncementService) ActiveFor(ctx context.Context, user *models.User) ([]models.Announcement, error) {
	return s.annRepo.ListActive(ctx, s.now(), user.Role)
}

// ListAnnouncements returns every announcement for the admin screen.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, actor *models.User) ([]models.Announcement, error) {
	if actor.Role < models.RoleManager {
		return nil, ErrForbidden
	}
	return s.annRepo.ListAll(ctx)
}

// DeleteAnnouncement retires an announcement. Manager and above.
func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if actor.Role < models.RoleManager {
		return ErrForbidden
	}
	if err := s.annRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete announcement")
	}
	if s.hub != nil {
		s.hub.PublishRefresh("announcements")
	}
	return nil
}

// SweepExpired deactivates announcements whose window closed. The worker
// runs this on a timer.
func (s *AnnouncementService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.annRepo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if s.hub != nil {
			s.hub.PublishRefresh("announcements")
		}
		log.Info().Int64("count", n).Msg("Expired announcements deactivated")
	}
	return n, nil
}

// PublishSystemUpdate records a release note and broadcasts it to every
// connected user. Admin only.
func (s *AnnouncementService) PublishSystemUpdate(ctx context.Context, actor *models.User, input *SystemUpdateInput) (*models.SystemUpdate, error) {
	if actor.Role < models.RoleAdmin {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, errors.Wrap(err, "invalid system update")
	}

	update := &models.SystemUpdate{
		ID:      uuid.New(),
		Version: input.Version,
		Title:   input.Title,
		Body:    input.Body,
	}
	if err := s.updateRepo.Create(ctx, update); err != nil {
		return nil, errors.Wrap(err, "failed to create system update")
	}

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Kind: realtime.KindSystemUpdate,
			Data: realtime.SystemUpdateEvent{
				UpdateID: update.ID,
				Version:  update.Version,
				Title:    update.Title,
			},
		})
	}
	log.Info().Str("version", update.Version).Msg("System update published")
	return update, nil
}

// UpdatesSince returns release notes newer than the last one the client
// saw, newest first.
func (s *AnnouncementService) UpdatesSince(ctx context.Context, lastSeenID *uuid.UUID, limit int) ([]models.SystemUpdate, error) {
	return s.updateRepo.ListSince(ctx, lastSeenID, limit)
}

// RequestLicenses files a seat increase request.
func (s *AnnouncementService) RequestLicenses(ctx context.Context, actor *models.User, quantity int, reason string) (*models.LicenseRequest, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	request := &models.LicenseRequest{
		ID:          uuid.New(),
		RequesterID: actor.ID,
		Quantity:    quantity,
		Reason:      reason,
		Status:      models.LicenseRequestOpen,
	}
	if err := s.licenseRepo.Create(ctx, request); err != nil {
		return nil, errors.Wrap(err, "failed to create license request")
	}
	return request, nil
}

// ListLicenseRequests returns seat requests for the admin screen.
func (s *AnnouncementService) ListLicenseRequests(ctx context.Context, actor *models.User, status string) ([]models.LicenseRequest, error) {
	if actor.Role < models.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.licenseRepo.List(ctx, status)
}

// DecideLicenseRequest approves or denies a seat request. Admin only.
func (s *AnnouncementService) DecideLicenseRequest(ctx context.Context, actor *models.User, id uuid.UUID, approve bool) error {
	if actor.Role < models.RoleAdmin {
		return ErrForbidden
	}
	status := models.LicenseRequestDenied
	if approve {
		status = models.LicenseRequestApproved
	}
	return s.licenseRepo.UpdateStatus(ctx, id, status)
}
