package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/projexhq/projex-server/internal/observability"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate maps driver errors onto the package sentinels. gorm's
// TranslateError covers both postgres and sqlite, the string checks catch
// handles opened without it.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return ErrDuplicate
	}
	return err
}

// finish translates err and records the outcome of one repository call.
func finish(ctx context.Context, repo, op string, err error) error {
	err = translate(err)
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrDuplicate):
		outcome = "duplicate"
	default:
		outcome = "error"
	}
	observability.RecordRepositoryOperation(ctx, repo, op, outcome)
	return err
}
