package service

import (
	"context"
	"errors"
	"strings"

	"github.com/projexhq/projex-server/internal/apperr"
	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/repository"
)

type TagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) *TagService {
	return &TagService{repo: repo}
}

func (s *TagService) Create(ctx context.Context, name, colorHex string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "tag name is required")
	}
	switch _, err := s.repo.FindByName(ctx, name); {
	case err == nil:
		return nil, apperr.ErrTagAlreadyExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Internal("lookup tag", err)
	}

	tag := &domain.Tag{Name: name, ColorHex: strings.ToUpper(colorHex)}
	if err := s.repo.Create(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrTagAlreadyExists
		}
		return nil, apperr.Internal("create tag", err)
	}
	return tag, nil
}

// EnsureDefaults creates each named tag that does not exist yet.
func (s *TagService) EnsureDefaults(ctx context.Context, names ...string) (int, error) {
	created := 0
	for _, name := range names {
		_, err := s.Create(ctx, name, "")
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperr.ErrTagAlreadyExists):
		default:
			return created, err
		}
	}
	return created, nil
}

func (s *TagService) Search(ctx context.Context, query string, page repository.PageRequest) (repository.PageResult[domain.Tag], error) {
	res, err := s.repo.Search(ctx, query, page)
	if err != nil {
		return res, apperr.Internal("search tags", err)
	}
	return res, nil
}
