package workflow

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
)

var (
	// ErrApproverRequired is returned when an article is submitted for
	// review without choosing an approver.
	ErrApproverRequired = errors.New("an approver must be selected before submitting")

	// ErrReasonRequired is returned when a rejection carries an empty or
	// whitespace-only reason.
	ErrReasonRequired = errors.New("a rejection reason is required")

	// ErrNotPending is returned when deciding an article that is not
	// awaiting review.
	ErrNotPending = errors.New("article is not pending review")

	// ErrNotAssignedApprover is returned when someone other than the
	// assigned approver tries to decide a pending article.
	ErrNotAssignedApprover = errors.New("only the assigned approver can decide this article")
)

// ArticleCapabilities is the capability set computed for one user over
// one article. It is a pure function of (role, article state, creator,
// assigned approver) and is recomputed on every call rather than stored.
type ArticleCapabilities struct {
	Edit    bool `json:"edit"`
	Submit  bool `json:"submit"`
	Approve bool `json:"approve"`
	Reject  bool `json:"reject"`
	Delete  bool `json:"delete"`
}

// CapabilitiesFor computes what the user may do with the article.
func CapabilitiesFor(user *models.User, article *models.KnowledgeArticle) ArticleCapabilities {
	if user == nil || article == nil {
		return ArticleCapabilities{}
	}

	isCreator := article.CreatorID == user.ID
	isAssignedApprover := article.ApproverID != nil && *article.ApproverID == user.ID
	elevated := user.Role >= models.RoleManager

	var caps ArticleCapabilities

	switch article.Status {
	case models.ArticleDraft:
		caps.Edit = isCreator || elevated
		caps.Submit = isCreator
	case models.ArticlePending:
		// Frozen under review; only the assigned approver decides.
		caps.Approve = isAssignedApprover
		caps.Reject = isAssignedApprover
	case models.ArticleApproved:
		// Terminal for normal edits; elevated roles may still revise.
		caps.Edit = elevated
	case models.ArticleRejected:
		// Only the original author can rework and resubmit.
		caps.Edit = isCreator
		caps.Submit = isCreator
	}

	caps.Delete = user.Role >= models.RoleAdmin ||
		(isCreator && article.Status == models.ArticleDraft)

	return caps
}

// ValidateSubmit checks the submit-for-review preconditions.
func ValidateSubmit(article *models.KnowledgeArticle, approverID uuid.UUID) error {
	if approverID == uuid.Nil {
		return ErrApproverRequired
	}
	if article.Status != models.ArticleDraft && article.Status != models.ArticleRejected {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", article.Status, models.ArticlePending)
	}
	return nil
}

// ValidateDecision checks an approve/reject call made by deciderID.
func ValidateDecision(article *models.KnowledgeArticle, deciderID uuid.UUID, approve bool, reason string) error {
	if article.Status != models.ArticlePending {
		return ErrNotPending
	}
	if article.ApproverID == nil || *article.ApproverID != deciderID {
		return ErrNotAssignedApprover
	}
	if !approve && strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// VisibleTo reports whether the article's visibility set admits the
// role. An empty set means visible to everyone.
func VisibleTo(article *models.KnowledgeArticle, role models.Role) bool {
	if article.Visibility == "" {
		return true
	}
	name := RoleName(role)
	for _, v := range strings.Split(article.Visibility, ",") {
		if strings.TrimSpace(v) == name {
			return true
		}
	}
	// Admins see everything regardless of the visibility set.
	return role >= models.RoleAdmin
}

// RoleName maps a role level to its stored name.
func RoleName(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "admin"
	case models.RoleManager:
		return "manager"
	default:
		return "operator"
	}
}
