package articles

import (
	"context"
	"testing"

	"impacto-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupArticleTest(t *testing.T) (*Service, *models.User, *models.User) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Article{}))

	author := &models.User{Email: "autor@example.com", Name: "Autor", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true)}
	admin := &models.User{Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin, IsActive: models.BoolPtr(true)}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(admin).Error)

	return &Service{DB: db}, author, admin
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "como-pedir-ajuda", slugify("Como Pedir Ajuda"))
	assert.Equal(t, "direitos-bsicos-2024", slugify("  Direitos Básicos: 2024!  "))
	assert.Equal(t, "article", slugify("???"))
	assert.Equal(t, "article", slugify(""))
}

func TestCreate_SlugDeduplication(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	in := CreateInput{Title: "Como Pedir Ajuda", BodyMD: "corpo", Tags: []string{"ajuda"}}

	first, err := s.Create(ctx, author, in)
	require.NoError(t, err)
	assert.Equal(t, "como-pedir-ajuda", first.Slug)

	second, err := s.Create(ctx, author, in)
	require.NoError(t, err)
	assert.Equal(t, "como-pedir-ajuda-2", second.Slug)

	third, err := s.Create(ctx, author, in)
	require.NoError(t, err)
	assert.Equal(t, "como-pedir-ajuda-3", third.Slug)
}

func TestCreate_Validation(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, author, CreateInput{Title: "ab", Tags: []string{"x"}})
	assert.Equal(t, ErrTitleTooShort, err)

	_, err = s.Create(ctx, author, CreateInput{Title: "Título válido"})
	assert.Equal(t, ErrNoTags, err)
}

func TestCreate_UnknownStatusRejected(t *testing.T) {
	s, author, _ := setupArticleTest(t)

	_, err := s.Create(context.Background(), author, CreateInput{
		Title: "Título válido", BodyMD: "corpo", Tags: []string{"x"},
		Status: models.ArticleStatus("publicado"),
	})
	assert.Equal(t, ErrInvalidStatus, err)
}

func TestUpdate_UnknownStatusRejected(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Meu Artigo", BodyMD: "corpo", Tags: []string{"x"},
	})
	require.NoError(t, err)

	bad := models.ArticleStatus("publicado")
	_, err = s.Update(ctx, author, article.ID, UpdateInput{Status: &bad})
	assert.Equal(t, ErrInvalidStatus, err)

	var stored models.Article
	require.NoError(t, s.DB.First(&stored, article.ID).Error)
	assert.Equal(t, models.ArticleStatusDraft, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestUpdate_AttachmentOnlyBumpsVersion(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Meu Artigo", BodyMD: "corpo", Tags: []string{"x"},
	})
	require.NoError(t, err)

	link := "https://cdn.example.com/articles/meu-artigo/capa.png"
	updated, err := s.Update(ctx, author, article.ID, UpdateInput{LinkImage: &link})
	require.NoError(t, err)
	require.NotNil(t, updated.LinkImage)
	assert.Equal(t, link, *updated.LinkImage)
	assert.Equal(t, 2, updated.Version)
}

func TestSetAttachmentLinks_KeepsInitialVersion(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Meu Artigo", BodyMD: "corpo", Tags: []string{"x"},
	})
	require.NoError(t, err)

	doc := "https://cdn.example.com/articles/meu-artigo/guia.pdf"
	require.NoError(t, s.SetAttachmentLinks(ctx, article, nil, &doc))

	var stored models.Article
	require.NoError(t, s.DB.First(&stored, article.ID).Error)
	require.NotNil(t, stored.LinkDoc)
	assert.Equal(t, doc, *stored.LinkDoc)
	assert.Equal(t, 1, stored.Version)
}

func TestCreate_Defaults(t *testing.T) {
	s, author, _ := setupArticleTest(t)

	article, err := s.Create(context.Background(), author, CreateInput{
		Title: "Título válido", BodyMD: "corpo", Tags: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusDraft, article.Status)
	assert.Equal(t, 1, article.Version)
	require.NotNil(t, article.AuthorID)
	assert.Equal(t, author.ID, *article.AuthorID)
	assert.Equal(t, []string{"a", "b"}, []string(article.Tags))
}

func TestUpdate_TitleChangeRegeneratesSlug(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Primeiro Título", BodyMD: "corpo", Tags: []string{"x"},
	})
	require.NoError(t, err)

	title := "Segundo Título"
	updated, err := s.Update(ctx, author, article.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "segundo-ttulo", updated.Slug)
	assert.Equal(t, 2, updated.Version)
}

func TestUpdate_SameTitleKeepsSlug(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Meu Artigo", BodyMD: "corpo", Tags: []string{"x"},
	})
	require.NoError(t, err)

	body := "corpo revisado"
	updated, err := s.Update(ctx, author, article.ID, UpdateInput{BodyMD: &body})
	require.NoError(t, err)
	assert.Equal(t, "meu-artigo", updated.Slug)
	assert.Equal(t, 2, updated.Version)
}

func TestUpdate_OnlyAuthorOrStaff(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Meu Artigo", BodyMD: "corpo", Tags: []string{"x"},
	})
	require.NoError(t, err)

	stranger := &models.User{Email: "outro@example.com", Name: "Outro", Role: models.RoleBeneficiario, IsActive: models.BoolPtr(true)}
	require.NoError(t, s.DB.Create(stranger).Error)

	body := "hack"
	_, err = s.Update(ctx, stranger, article.ID, UpdateInput{BodyMD: &body})
	assert.Equal(t, ErrForbiddenEdit, err)
}

func TestApprove_SetsReviewerAndStatus(t *testing.T) {
	s, author, admin := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Meu Artigo", BodyMD: "corpo", Tags: []string{"x"},
		Status: models.ArticleStatusPending,
	})
	require.NoError(t, err)

	result, err := s.Approve(ctx, admin, article.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, "Artigo aprovado", result.Message)

	var stored models.Article
	require.NoError(t, s.DB.First(&stored, article.ID).Error)
	assert.Equal(t, models.ArticleStatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedByID)
	assert.Equal(t, admin.ID, *stored.ApprovedByID)
	assert.NotNil(t, stored.ApprovedAt)
}

func TestApprove_RejectionIncludesReason(t *testing.T) {
	s, author, admin := setupArticleTest(t)
	ctx := context.Background()

	article, err := s.Create(ctx, author, CreateInput{
		Title: "Meu Artigo", BodyMD: "corpo", Tags: []string{"x"},
	})
	require.NoError(t, err)

	result, err := s.Approve(ctx, admin, article.ID, false, "conteúdo incompleto")
	require.NoError(t, err)
	assert.Equal(t, "Artigo rejeitado: conteúdo incompleto", result.Message)

	result, err = s.Approve(ctx, admin, article.ID, false, "")
	require.NoError(t, err)
	assert.Equal(t, "Artigo rejeitado: sem motivo informado", result.Message)
}

func TestList_Filters(t *testing.T) {
	s, author, _ := setupArticleTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, author, CreateInput{
		Title: "Guia de Alimentação", BodyMD: "comida", Tags: []string{"saude"},
		Status: models.ArticleStatusApproved,
	})
	require.NoError(t, err)
	_, err = s.Create(ctx, author, CreateInput{
		Title: "Guia de Moradia", BodyMD: "casa", Tags: []string{"moradia"},
	})
	require.NoError(t, err)

	approved, total, err := s.List(ctx, ListFilter{Status: string(models.ArticleStatusApproved)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, approved, 1)
	assert.Equal(t, "Guia de Alimentação", approved[0].Title)

	byTag, _, err := s.List(ctx, ListFilter{Tag: "moradia"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Guia de Moradia", byTag[0].Title)

	bySearch, _, err := s.List(ctx, ListFilter{Search: "alimenta"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
}
