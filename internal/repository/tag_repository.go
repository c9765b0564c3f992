package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/projexhq/projex-server/internal/domain"
)

type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	FindByName(ctx context.Context, name string) (*domain.Tag, error)
	Search(ctx context.Context, query string, page PageRequest) (PageResult[domain.Tag], error)
}

type GormTagRepository struct{ db *gorm.DB }

func NewTagRepository(db *gorm.DB) TagRepository { return &GormTagRepository{db: db} }

func (r *GormTagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	return finish(ctx, "tag", "create", r.db.WithContext(ctx).Create(tag).Error)
}

func (r *GormTagRepository) FindByName(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err := finish(ctx, "tag", "find_by_name", err); err != nil {
		return nil, err
	}
	return &tag, nil
}

// Search matches tag names case-insensitively on a substring of query.
func (r *GormTagRepository) Search(ctx context.Context, query string, page PageRequest) (PageResult[domain.Tag], error) {
	page = page.Normalize()

	q := r.db.WithContext(ctx).Model(&domain.Tag{})
	if term := strings.TrimSpace(query); term != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(term))+"%")
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return newPageResult[domain.Tag](page, nil, 0), finish(ctx, "tag", "search", err)
	}
	var items []domain.Tag
	err := q.Session(&gorm.Session{}).Order("name ASC").Offset(page.Offset()).Limit(page.PageSize).Find(&items).Error
	return newPageResult(page, items, total), finish(ctx, "tag", "search", err)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
