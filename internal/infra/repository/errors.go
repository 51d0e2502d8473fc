package repository

import (
	"errors"

	repo "oifit/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// unique_violation
const pgUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// GORMのエラーをrepositoryのエラーに寄せる
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return repo.ErrNotFound
	}
	if isUniqueViolation(err) {
		return repo.ErrConflict
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
