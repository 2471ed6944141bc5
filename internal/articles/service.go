package articles

import (
	"context"
	"errors"
	"strings"
	"time"

	"impacto-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("Artigo não encontrado")
	ErrTitleTooShort   = errors.New("Título deve ter no mínimo 3 caracteres")
	ErrNoTags          = errors.New("Informe ao menos uma tag")
	ErrInvalidStatus   = errors.New("Status de artigo inválido")
	ErrForbiddenEdit   = errors.New("Sem permissão para editar este artigo")
)

// Service manages educational articles and their approval workflow.
type Service struct {
	DB *gorm.DB
}

// ListFilter narrows the public article listing.
type ListFilter struct {
	Status   string
	Search   string
	Tag      string
	AuthorID *uint
	Page     int
	PageSize int
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Article, int64, error) {
	filter.normalize()

	query := s.DB.WithContext(ctx).Model(&models.Article{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(body_md) LIKE ?", like, like)
	}
	if filter.Tag != "" {
		// Tags live in a JSON array column; match the quoted element.
		query = query.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []models.Article
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("id DESC").Offset(offset).Limit(filter.PageSize).Find(&articles).Error; err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := s.DB.WithContext(ctx).First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// CreateInput carries a new article's content.
type CreateInput struct {
	Title     string
	BodyMD    string
	Tags      []string
	LinkDoc   *string
	LinkImage *string
	Status    models.ArticleStatus
}

func (s *Service) Create(ctx context.Context, author *models.User, in CreateInput) (*models.Article, error) {
	if len(strings.TrimSpace(in.Title)) < 3 {
		return nil, ErrTitleTooShort
	}
	if len(in.Tags) == 0 {
		return nil, ErrNoTags
	}
	if in.Status != "" && !models.IsValidArticleStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	slug, err := ensureUniqueSlug(ctx, s.DB, slugify(in.Title), nil)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.ArticleStatusDraft
	}

	article := &models.Article{
		Title:     in.Title,
		Slug:      slug,
		BodyMD:    in.BodyMD,
		Tags:      datatypes.JSONSlice[string](in.Tags),
		LinkDoc:   in.LinkDoc,
		LinkImage: in.LinkImage,
		Status:    status,
		Version:   1,
		AuthorID:  &author.ID,
	}
	if err := s.DB.WithContext(ctx).Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// SetAttachmentLinks records uploaded attachment URLs on a freshly created
// article. The initial version stays 1; later attachment changes go through
// Update and bump it.
func (s *Service) SetAttachmentLinks(ctx context.Context, article *models.Article, linkImage, linkDoc *string) error {
	updates := map[string]interface{}{}
	if linkImage != nil {
		updates["link_image"] = *linkImage
	}
	if linkDoc != nil {
		updates["link_doc"] = *linkDoc
	}
	if len(updates) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Model(article).Updates(updates).Error
}

// UpdateInput holds the mutable article fields.
type UpdateInput struct {
	Title     *string
	BodyMD    *string
	Tags      []string
	LinkDoc   *string
	LinkImage *string
	Status    *models.ArticleStatus
}

func canEdit(actor *models.User, article *models.Article) bool {
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleAssistente {
		return true
	}
	return article.AuthorID != nil && *article.AuthorID == actor.ID
}

// Update edits an article. A changed title regenerates the slug, and
// every update bumps the version counter.
func (s *Service) Update(ctx context.Context, actor *models.User, id uint, in UpdateInput) (*models.Article, error) {
	db := s.DB.WithContext(ctx)

	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, article) {
		return nil, ErrForbiddenEdit
	}
	if in.Status != nil && !models.IsValidArticleStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	updates := map[string]interface{}{}
	if in.Title != nil && *in.Title != article.Title {
		if len(strings.TrimSpace(*in.Title)) < 3 {
			return nil, ErrTitleTooShort
		}
		slug, err := ensureUniqueSlug(ctx, s.DB, slugify(*in.Title), &article.ID)
		if err != nil {
			return nil, err
		}
		updates["title"] = *in.Title
		updates["slug"] = slug
	}
	if in.BodyMD != nil {
		updates["body_md"] = *in.BodyMD
	}
	if in.Tags != nil {
		if len(in.Tags) == 0 {
			return nil, ErrNoTags
		}
		updates["tags"] = datatypes.JSONSlice[string](in.Tags)
	}
	if in.LinkDoc != nil {
		updates["link_doc"] = *in.LinkDoc
	}
	if in.LinkImage != nil {
		updates["link_image"] = *in.LinkImage
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}

	if len(updates) > 0 {
		updates["version"] = gorm.Expr("version + 1")
		if err := db.Model(article).Updates(updates).Error; err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}
	return article, nil
}

// ApproveResult carries the reviewed article and the outcome line.
type ApproveResult struct {
	Article *models.Article
	Message string
}

// Approve records the admin review decision.
func (s *Service) Approve(ctx context.Context, actor *models.User, id uint, approved bool, reason string) (*ApproveResult, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := models.ArticleStatusApproved
	message := "Artigo aprovado"
	if !approved {
		status = models.ArticleStatusRejected
		if reason == "" {
			reason = "sem motivo informado"
		}
		message = "Artigo rejeitado: " + reason
	}

	updates := map[string]interface{}{
		"status":         status,
		"approved_by_id": actor.ID,
		"approved_at":    now,
	}
	if err := s.DB.WithContext(ctx).Model(article).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &ApproveResult{Article: article, Message: message}, nil
}
