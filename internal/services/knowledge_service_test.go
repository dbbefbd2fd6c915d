package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/metrics"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/workflow"
)

func newTestKnowledgeService(articleRepo *MockArticleRepository, userRepo *MockUserRepository, notifier *MockNotifier, indexer *MockIndexer) *KnowledgeService {
	s := &KnowledgeService{
		articleRepo: articleRepo,
		metrics:     metrics.NewMetrics(),
	}
	if userRepo != nil {
		s.userRepo = userRepo
	}
	if notifier != nil {
		s.notifier = notifier
	}
	if indexer != nil {
		s.indexer = indexer
	}
	return s
}

func TestCreateArticleStartsAsDraft(t *testing.T) {
	articleRepo := new(MockArticleRepository)
	articleRepo.On("Count", mock.Anything).Return(int64(7), nil)
	articleRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.KnowledgeArticle")).Return(nil)

	service := newTestKnowledgeService(articleRepo, nil, nil, nil)
	creator := &models.User{ID: uuid.New(), Role: models.RoleOperator}

	article, err := service.Create(context.Background(), creator, &ArticleInput{
		Title:   "Troca de pneu em rodovia",
		Content: "Sinalize a via antes de iniciar.",
	})

	require.NoError(t, err)
	require.Equal(t, models.ArticleDraft, article.Status)
	require.Equal(t, "KB-0008", article.KBCode)
	require.Equal(t, creator.ID, article.CreatorID)
}

func TestCreateArticleRejectsMissingTitle(t *testing.T) {
	articleRepo := new(MockArticleRepository)
	service := newTestKnowledgeService(articleRepo, nil, nil, nil)

	_, err := service.Create(context.Background(), &models.User{ID: uuid.New()}, &ArticleInput{Content: "corpo"})
	require.Error(t, err)
	articleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitAssignsApproverAndNotifies(t *testing.T) {
	creator := &models.User{ID: uuid.New(), Role: models.RoleOperator}
	approverID := uuid.New()
	article := &models.KnowledgeArticle{
		ID:        uuid.New(),
		KBCode:    "KB-0001",
		Title:     "Procedimento de reboque",
		Status:    models.ArticleDraft,
		CreatorID: creator.ID,
	}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)
	articleRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *models.KnowledgeArticle) bool {
		return a.Status == models.ArticlePending && a.ApproverID != nil && *a.ApproverID == approverID
	})).Return(nil)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", mock.Anything, approverID).Return(&models.User{ID: approverID, Role: models.RoleManager}, nil)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, approverID, models.NotifyArticle, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	service := newTestKnowledgeService(articleRepo, userRepo, notifier, nil)

	updated, err := service.Submit(context.Background(), creator, article.ID, approverID)
	require.NoError(t, err)
	require.Equal(t, models.ArticlePending, updated.Status)

	articleRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSubmitRejectsOperatorApprover(t *testing.T) {
	creator := &models.User{ID: uuid.New(), Role: models.RoleOperator}
	approverID := uuid.New()
	article := &models.KnowledgeArticle{ID: uuid.New(), Status: models.ArticleDraft, CreatorID: creator.ID}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", mock.Anything, approverID).Return(&models.User{ID: approverID, Role: models.RoleOperator}, nil)

	service := newTestKnowledgeService(articleRepo, userRepo, nil, nil)

	_, err := service.Submit(context.Background(), creator, article.ID, approverID)
	require.Error(t, err)
	articleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDecideApproveIndexesArticle(t *testing.T) {
	approverID := uuid.New()
	creatorID := uuid.New()
	article := &models.KnowledgeArticle{
		ID:         uuid.New(),
		KBCode:     "KB-0002",
		Status:     models.ArticlePending,
		CreatorID:  creatorID,
		ApproverID: &approverID,
	}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)
	articleRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *models.KnowledgeArticle) bool {
		return a.Status == models.ArticleApproved
	})).Return(nil)

	indexer := new(MockIndexer)
	indexer.On("IndexArticle", mock.Anything, mock.AnythingOfType("*models.KnowledgeArticle")).Return(nil)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, creatorID, models.NotifyArticle, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	service := newTestKnowledgeService(articleRepo, nil, notifier, indexer)
	approver := &models.User{ID: approverID, Role: models.RoleManager}

	updated, err := service.Decide(context.Background(), approver, article.ID, true, "")
	require.NoError(t, err)
	require.Equal(t, models.ArticleApproved, updated.Status)

	indexer.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDecideApproveWithoutIndexerConfigured(t *testing.T) {
	approverID := uuid.New()
	article := &models.KnowledgeArticle{
		ID:         uuid.New(),
		KBCode:     "KB-0003",
		Status:     models.ArticlePending,
		CreatorID:  uuid.New(),
		ApproverID: &approverID,
	}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)
	articleRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.KnowledgeArticle")).Return(nil)

	service := newTestKnowledgeService(articleRepo, nil, nil, nil)
	approver := &models.User{ID: approverID, Role: models.RoleManager}

	updated, err := service.Decide(context.Background(), approver, article.ID, true, "")
	require.NoError(t, err)
	require.Equal(t, models.ArticleApproved, updated.Status)
}

func TestSearchWithoutIndexerConfigured(t *testing.T) {
	service := newTestKnowledgeService(new(MockArticleRepository), nil, nil, nil)

	_, err := service.Search(context.Background(), &models.User{ID: uuid.New()}, "reboque", 10)
	require.Error(t, err)
}

func TestDecideRejectRequiresReason(t *testing.T) {
	approverID := uuid.New()
	article := &models.KnowledgeArticle{
		ID:         uuid.New(),
		Status:     models.ArticlePending,
		CreatorID:  uuid.New(),
		ApproverID: &approverID,
	}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)

	service := newTestKnowledgeService(articleRepo, nil, nil, nil)
	approver := &models.User{ID: approverID, Role: models.RoleManager}

	_, err := service.Decide(context.Background(), approver, article.ID, false, "   ")
	require.ErrorIs(t, err, workflow.ErrReasonRequired)
	articleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDecideOnlyAssignedApprover(t *testing.T) {
	approverID := uuid.New()
	article := &models.KnowledgeArticle{
		ID:         uuid.New(),
		Status:     models.ArticlePending,
		CreatorID:  uuid.New(),
		ApproverID: &approverID,
	}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)

	service := newTestKnowledgeService(articleRepo, nil, nil, nil)
	intruder := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	_, err := service.Decide(context.Background(), intruder, article.ID, true, "")
	require.ErrorIs(t, err, workflow.ErrNotAssignedApprover)
}

func TestUpdateRejectedArticleReturnsToDraft(t *testing.T) {
	creator := &models.User{ID: uuid.New(), Role: models.RoleOperator}
	reason := "faltam passos de segurança"
	article := &models.KnowledgeArticle{
		ID:              uuid.New(),
		Status:          models.ArticleRejected,
		CreatorID:       creator.ID,
		RejectionReason: &reason,
	}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)
	articleRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *models.KnowledgeArticle) bool {
		return a.Status == models.ArticleDraft && a.RejectionReason == nil
	})).Return(nil)

	service := newTestKnowledgeService(articleRepo, nil, nil, nil)

	updated, err := service.Update(context.Background(), creator, article.ID, &ArticleInput{
		Title:   "Procedimento revisado",
		Content: "Agora com sinalização.",
	})
	require.NoError(t, err)
	require.Equal(t, models.ArticleDraft, updated.Status)
	articleRepo.AssertExpectations(t)
}

func TestUpdatePendingArticleIsFrozen(t *testing.T) {
	creator := &models.User{ID: uuid.New(), Role: models.RoleOperator}
	approverID := uuid.New()
	article := &models.KnowledgeArticle{
		ID:         uuid.New(),
		Status:     models.ArticlePending,
		CreatorID:  creator.ID,
		ApproverID: &approverID,
	}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)

	service := newTestKnowledgeService(articleRepo, nil, nil, nil)

	_, err := service.Update(context.Background(), creator, article.ID, &ArticleInput{Title: "x", Content: "y"})
	require.ErrorIs(t, err, ErrForbidden)
	articleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDeleteApprovedArticleDropsFromIndex(t *testing.T) {
	article := &models.KnowledgeArticle{ID: uuid.New(), Status: models.ArticleApproved, CreatorID: uuid.New()}

	articleRepo := new(MockArticleRepository)
	articleRepo.On("GetByID", mock.Anything, article.ID).Return(article, nil)
	articleRepo.On("Delete", mock.Anything, article.ID).Return(nil)

	indexer := new(MockIndexer)
	indexer.On("RemoveArticle", mock.Anything, article.ID.String()).Return(nil)

	service := newTestKnowledgeService(articleRepo, nil, nil, indexer)

	err := service.Delete(context.Background(), &models.User{ID: uuid.New(), Role: models.RoleAdmin}, article.ID)
	require.NoError(t, err)
	indexer.AssertExpectations(t)
}

func TestSearchFiltersByVisibility(t *testing.T) {
	indexer := new(MockIndexer)
	indexer.On("SearchArticles", mock.Anything, "reboque", 10).Return([]map[string]interface{}{
		{"title": "Visível para todos", "visibility": ""},
		{"title": "Somente gestores", "visibility": "manager,admin"},
	}, nil)

	articleRepo := new(MockArticleRepository)
	service := newTestKnowledgeService(articleRepo, nil, nil, indexer)

	hits, err := service.Search(context.Background(), &models.User{Role: models.RoleOperator}, "reboque", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "Visível para todos", hits[0]["title"])

	hits, err = service.Search(context.Background(), &models.User{Role: models.RoleManager}, "reboque", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}
