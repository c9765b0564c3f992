package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/repository"
	"github.com/projexhq/projex-server/internal/security"
	"github.com/projexhq/projex-server/internal/service"
)

var DefaultTags = []string{"Development", "Bug", "Modification", "Research", "Review"}

type Superuser struct {
	Name     string
	Email    string
	Password string
}

type Result struct {
	SuperuserCreated bool
	TagsCreated      int
}

type Seeder struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	tags   *service.TagService
	logger *slog.Logger
}

func New(users repository.UserRepository, hasher security.PasswordHasher, tags *service.TagService, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{users: users, hasher: hasher, tags: tags, logger: logger}
}

// Run is idempotent: an existing superuser email or tag name is left alone.
func (s *Seeder) Run(ctx context.Context, admin Superuser) (Result, error) {
	var res Result
	created, err := s.ensureSuperuser(ctx, admin)
	if err != nil {
		return res, err
	}
	res.SuperuserCreated = created

	n, err := s.tags.EnsureDefaults(ctx, DefaultTags...)
	if err != nil {
		return res, fmt.Errorf("seed tags: %w", err)
	}
	res.TagsCreated = n
	s.logger.Info("seed complete", "superuser_created", res.SuperuserCreated, "tags_created", res.TagsCreated)
	return res, nil
}

func (s *Seeder) ensureSuperuser(ctx context.Context, admin Superuser) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		s.logger.Warn("superuser seed skipped: email or password not configured")
		return false, nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return false, fmt.Errorf("lookup superuser: %w", err)
	}

	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return false, fmt.Errorf("hash superuser password: %w", err)
	}
	user := &domain.User{
		FullName:       admin.Name,
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
		IsSuperuser:    true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create superuser: %w", err)
	}
	s.logger.Info("superuser created", "user_id", user.ID)
	return true, nil
}
