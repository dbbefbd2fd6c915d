package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
)

// UserService handles user directory operations
type UserService struct {
	userRepo repositories.UserRepository
	attRepo  repositories.AttachmentRepository
}

// NewUserService creates a new user service
func NewUserService(db, readOnlyDB *gorm.DB) *UserService {
	return &UserService{
		userRepo: repositories.NewUserRepository(db, readOnlyDB),
		attRepo:  repositories.NewAttachmentRepository(db, readOnlyDB),
	}
}

// List returns the user directory.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// ListApprovers returns the users allowed to review knowledge articles.
func (s *UserService) ListApprovers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListByMinRole(ctx, models.RoleManager)
}

// SetPhoto points the user's profile at an uploaded attachment the same
// user owns.
func (s *UserService) SetPhoto(ctx context.Context, actor *models.User, attachmentID uuid.UUID) error {
	attachment, err := s.attRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	if attachment.UploadedBy != actor.ID {
		return ErrForbidden
	}

	if err := s.attRepo.SetOwner(ctx, attachmentID, models.OwnerUserPhoto, actor.ID); err != nil {
		return errors.Wrap(err, "failed to claim photo attachment")
	}

	actor.PhotoID = &attachmentID
	return s.userRepo.Save(ctx, actor)
}
