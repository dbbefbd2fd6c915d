package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/realtime"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/utils"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/workflow"
)

// ArticleIndexer is the slice of the search client the knowledge base
// uses. Only approved articles are ever indexed.
type ArticleIndexer interface {
	IndexArticle(ctx context.Context, article *models.KnowledgeArticle) error
	RemoveArticle(ctx context.Context, articleID string) error
	SearchArticles(ctx context.Context, query string, size int) ([]map[string]interface{}, error)
}

// ArticleInput carries the editable fields of a knowledge article.
type ArticleInput struct {
	Title      string `json:"title" validate:"required"`
	Category   string `json:"category"`
	Content    string `json:"content" validate:"required"`
	Tags       string `json:"tags"`
	Visibility string `json:"visibility"`
}

// ArticleView pairs an article with what the acting user may do to it.
type ArticleView struct {
	models.KnowledgeArticle
	Capabilities workflow.ArticleCapabilities `json:"capabilities"`
}

// KnowledgeService handles the knowledge base review workflow
type KnowledgeService struct {
	articleRepo repositories.ArticleRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	indexer     ArticleIndexer
	hub         *realtime.Hub
	metrics     *metrics.Metrics
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(
	db *gorm.DB,
	readOnlyDB *gorm.DB,
	notifier Notifier,
	indexer ArticleIndexer,
	hub *realtime.Hub,
	m *metrics.Metrics,
) *KnowledgeService {
	return &KnowledgeService{
		articleRepo: repositories.NewArticleRepository(db, readOnlyDB),
		userRepo:    repositories.NewUserRepository(db, readOnlyDB),
		notifier:    notifier,
		indexer:     indexer,
		hub:         hub,
		metrics:     m,
	}
}

// Create starts a new article in draft for the acting user.
func (s *KnowledgeService) Create(ctx context.Context, actor *models.User, input *ArticleInput) (*models.KnowledgeArticle, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, errors.Wrap(err, "invalid article")
	}

	count, err := s.articleRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	article := &models.KnowledgeArticle{
		ID:         uuid.New(),
		KBCode:     fmt.Sprintf("KB-%04d", count+1),
		Title:      input.Title,
		Category:   input.Category,
		Content:    input.Content,
		Tags:       input.Tags,
		Visibility: input.Visibility,
		Status:     models.ArticleDraft,
		CreatorID:  actor.ID,
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, errors.Wrap(err, "failed to create article")
	}

	log.Info().Str("article_id", article.ID.String()).Str("kb_code", article.KBCode).Msg("Knowledge article created")
	return article, nil
}

// Get returns one article decorated with the actor's capabilities.
// Articles outside the actor's visibility are treated as not found.
func (s *KnowledgeService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*ArticleView, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.VisibleTo(article, actor.Role) && article.CreatorID != actor.ID {
		return nil, errors.New("article not found")
	}
	return &ArticleView{
		KnowledgeArticle: *article,
		Capabilities:     workflow.CapabilitiesFor(actor, article),
	}, nil
}

// List filters articles by status and category and trims the result to
// what the actor may see.
func (s *KnowledgeService) List(ctx context.Context, actor *models.User, status, category string) ([]ArticleView, error) {
	articles, err := s.articleRepo.List(ctx, status, category)
	if err != nil {
		return nil, err
	}
	views := make([]ArticleView, 0, len(articles))
	for i := range articles {
		article := &articles[i]
		if !workflow.VisibleTo(article, actor.Role) && article.CreatorID != actor.ID {
			continue
		}
		views = append(views, ArticleView{
			KnowledgeArticle: *article,
			Capabilities:     workflow.CapabilitiesFor(actor, article),
		})
	}
	return views, nil
}

// Update edits an article's content within what the review workflow
// allows for the actor.
func (s *KnowledgeService) Update(ctx context.Context, actor *models.User, id uuid.UUID, input *ArticleInput) (*models.KnowledgeArticle, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, errors.Wrap(err, "invalid article")
	}

	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.CapabilitiesFor(actor, article).Edit {
		return nil, ErrForbidden
	}

	article.Title = input.Title
	article.Category = input.Category
	article.Content = input.Content
	article.Tags = input.Tags
	article.Visibility = input.Visibility
	if article.Status == models.ArticleRejected {
		// Editing a rejected article pulls it back to draft.
		article.Status = models.ArticleDraft
		article.RejectionReason = nil
	}

	if err := s.articleRepo.Save(ctx, article); err != nil {
		return nil, errors.Wrap(err, "failed to update article")
	}

	// Approved articles stay searchable with the new content.
	if article.Status == models.ArticleApproved && s.indexer != nil {
		if err := s.indexer.IndexArticle(ctx, article); err != nil {
			log.Warn().Err(err).Str("article_id", article.ID.String()).Msg("Failed to reindex article")
		}
	}

	return article, nil
}

// Submit sends a draft or rejected article to the chosen approver.
func (s *KnowledgeService) Submit(ctx context.Context, actor *models.User, id, approverID uuid.UUID) (*models.KnowledgeArticle, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.CapabilitiesFor(actor, article).Submit {
		return nil, ErrForbidden
	}
	if err := workflow.ValidateSubmit(article, approverID); err != nil {
		return nil, err
	}

	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		return nil, errors.Wrap(err, "approver not found")
	}
	if approver.Role < models.RoleManager {
		return nil, errors.New("approver must be a manager or admin")
	}

	article.Status = models.ArticlePending
	article.ApproverID = &approverID
	article.RejectionReason = nil

	if err := s.articleRepo.Save(ctx, article); err != nil {
		return nil, errors.Wrap(err, "failed to submit article")
	}

	if s.notifier != nil {
		msg := "Artigo " + article.KBCode + " aguarda sua aprovação: " + article.Title
		if err := s.notifier.Notify(ctx, approverID, models.NotifyArticle, msg, &article.ID); err != nil {
			log.Warn().Err(err).Str("article_id", article.ID.String()).Msg("Failed to notify approver")
		}
	}

	log.Info().Str("article_id", article.ID.String()).Str("approver_id", approverID.String()).Msg("Article submitted for review")
	return article, nil
}

// Decide records the assigned approver's verdict. Approval makes the
// article searchable; rejection requires a non-empty reason.
func (s *KnowledgeService) Decide(ctx context.Context, actor *models.User, id uuid.UUID, approve bool, reason string) (*models.KnowledgeArticle, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateDecision(article, actor.ID, approve, reason); err != nil {
		return nil, err
	}

	if approve {
		article.Status = models.ArticleApproved
		article.RejectionReason = nil
	} else {
		article.Status = models.ArticleRejected
		trimmed := strings.TrimSpace(reason)
		article.RejectionReason = &trimmed
	}

	if err := s.articleRepo.Save(ctx, article); err != nil {
		return nil, errors.Wrap(err, "failed to record decision")
	}

	if approve {
		s.metrics.IncrementCounter(metrics.CounterArticlesApproved)
		if s.indexer != nil {
			if err := s.indexer.IndexArticle(ctx, article); err != nil {
				log.Warn().Err(err).Str("article_id", article.ID.String()).Msg("Failed to index approved article")
			}
		}
		if s.hub != nil {
			s.hub.PublishRefresh("knowledge")
		}
	}

	if s.notifier != nil {
		msg := "Artigo " + article.KBCode + " foi aprovado"
		if !approve {
			msg = "Artigo " + article.KBCode + " foi rejeitado: " + *article.RejectionReason
		}
		if err := s.notifier.Notify(ctx, article.CreatorID, models.NotifyArticle, msg, &article.ID); err != nil {
			log.Warn().Err(err).Str("article_id", article.ID.String()).Msg("Failed to notify creator of decision")
		}
	}

	log.Info().Str("article_id", article.ID.String()).Bool("approved", approve).Msg("Article decision recorded")
	return article, nil
}

// Delete removes an article and, when it was approved, drops it from the
// search index.
func (s *KnowledgeService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.CapabilitiesFor(actor, article).Delete {
		return ErrForbidden
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete article")
	}

	if article.Status == models.ArticleApproved && s.indexer != nil {
		if err := s.indexer.RemoveArticle(ctx, id.String()); err != nil {
			log.Warn().Err(err).Str("article_id", id.String()).Msg("Failed to remove article from index")
		}
	}
	return nil
}

// BulkDecide applies one verdict to several pending articles. Articles
// the actor cannot decide are skipped and reported back.
func (s *KnowledgeService) BulkDecide(ctx context.Context, actor *models.User, ids []uuid.UUID, approve bool, reason string) (decided []uuid.UUID, skipped []uuid.UUID, err error) {
	for _, id := range ids {
		if _, decideErr := s.Decide(ctx, actor, id, approve, reason); decideErr != nil {
			skipped = append(skipped, id)
			continue
		}
		decided = append(decided, id)
	}
	return decided, skipped, nil
}

// BulkDelete removes several articles. Articles the actor cannot delete
// are skipped and reported back.
func (s *KnowledgeService) BulkDelete(ctx context.Context, actor *models.User, ids []uuid.UUID) (deleted []uuid.UUID, skipped []uuid.UUID, err error) {
	for _, id := range ids {
		if deleteErr := s.Delete(ctx, actor, id); deleteErr != nil {
			skipped = append(skipped, id)
			continue
		}
		deleted = append(deleted, id)
	}
	return deleted, skipped, nil
}

// Search runs a full-text query over approved articles and filters the
// hits down to the actor's visibility.
func (s *KnowledgeService) Search(ctx context.Context, actor *models.User, query string, size int) ([]map[string]interface{}, error) {
	if s.indexer == nil {
		return nil, errors.New("search is not configured")
	}
	hits, err := s.indexer.SearchArticles(ctx, query, size)
	if err != nil {
		return nil, errors.Wrap(err, "article search failed")
	}

	role := workflow.RoleName(actor.Role)
	out := make([]map[string]interface{}, 0, len(hits))
	for _, hit := range hits {
		visibility, _ := hit["visibility"].(string)
		if visibility != "" && !strings.Contains(visibility, role) {
			continue
		}
		out = append(out, hit)
	}
	return out, nil
}
