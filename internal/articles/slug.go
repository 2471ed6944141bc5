package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"impacto-backend/internal/models"

	"gorm.io/gorm"
)

// slugify lowercases the title, joins its words with hyphens and strips
// everything outside [a-z0-9-]. An empty result falls back to "article".
func slugify(title string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(title)))
	joined := strings.Join(words, "-")

	var b strings.Builder
	for _, r := range joined {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	slug := b.String()
	if slug == "" {
		return "article"
	}
	return slug
}

// ensureUniqueSlug appends "-2", "-3", ... until the slug is free.
// excludeID skips the article's own row so re-saving keeps its slug.
func ensureUniqueSlug(ctx context.Context, db *gorm.DB, base string, excludeID *uint) (string, error) {
	slug := base
	for suffix := 2; ; suffix++ {
		query := db.WithContext(ctx).Model(&models.Article{}).Where("slug = ?", slug)
		if excludeID != nil {
			query = query.Where("id <> ?", *excludeID)
		}
		var existing models.Article
		err := query.First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		slug = fmt.Sprintf("%s-%d", base, suffix)
	}
}
