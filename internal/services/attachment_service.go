package services

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/storage"
)

// AttachmentService stores uploaded files and their metadata. Files are
// uploaded first and claimed by a note, message or article afterwards.
type AttachmentService struct {
	attRepo repositories.AttachmentRepository
	store   *storage.Store
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(db, readOnlyDB *gorm.DB, store *storage.Store) *AttachmentService {
	return &AttachmentService{
		attRepo: repositories.NewAttachmentRepository(db, readOnlyDB),
		store:   store,
	}
}

// Upload writes the file to the blob store and records its metadata.
func (s *AttachmentService) Upload(ctx context.Context, actor *models.User, fileName, mimeType string, declaredSize int64, r io.Reader) (*models.Attachment, error) {
	if fileName == "" {
		return nil, errors.New("file name is required")
	}

	key := storage.NewKey(fileName)
	written, err := s.store.Save(key, r, declaredSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store attachment")
	}

	attachment := &models.Attachment{
		ID:         uuid.New(),
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  written,
		OwnerType:  "",
		StorageKey: key,
		UploadedBy: actor.ID,
	}
	if err := s.attRepo.Create(ctx, attachment); err != nil {
		// Orphan blobs are worse than a failed upload.
		if rmErr := s.store.Delete(key); rmErr != nil {
			log.Warn().Err(rmErr).Str("key", key).Msg("Failed to remove blob after metadata failure")
		}
		return nil, errors.Wrap(err, "failed to record attachment")
	}

	log.Info().Str("attachment_id", attachment.ID.String()).Str("file", fileName).Int64("bytes", written).Msg("Attachment uploaded")
	return attachment, nil
}

// Open returns the attachment metadata and a reader over its payload.
// The caller must close the reader.
func (s *AttachmentService) Open(ctx context.Context, id uuid.UUID) (*models.Attachment, io.ReadCloser, error) {
	attachment, err := s.attRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(attachment.StorageKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open attachment payload")
	}
	return attachment, rc, nil
}

// Delete removes an attachment and its payload. Admin only, or the user
// who uploaded it while it is still unclaimed.
func (s *AttachmentService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	attachment, err := s.attRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role < models.RoleAdmin && !(attachment.UploadedBy == actor.ID && attachment.OwnerID == nil) {
		return ErrForbidden
	}

	if err := s.attRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete attachment")
	}
	if err := s.store.Delete(attachment.StorageKey); err != nil {
		log.Warn().Err(err).Str("key", attachment.StorageKey).Msg("Failed to remove attachment blob")
	}
	return nil
}

// MaxBytes exposes the upload size limit for handlers.
func (s *AttachmentService) MaxBytes() int64 {
	return s.store.MaxBytes()
}
