package gormrepo

import (
	"context"
	"errors"

	"rescuesim/internal/adapter/repo/gorm/model"
	"rescuesim/internal/app/ports"

	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return UserRepo{db: db}
}

func (r UserRepo) Create(ctx context.Context, user ports.UserRecord) error {
	row := model.User{
		UserID:       user.UserID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := getDBFromCtx(ctx, r.db).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r UserRepo) GetByEmail(ctx context.Context, email string) (ports.UserRecord, error) {
	return r.first(ctx, "email = ?", email)
}

func (r UserRepo) GetByID(ctx context.Context, userID string) (ports.UserRecord, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r UserRepo) first(ctx context.Context, cond, arg string) (ports.UserRecord, error) {
	var row model.User
	if err := getDBFromCtx(ctx, r.db).Where(cond, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserRecord{}, ports.ErrNotFound
		}
		return ports.UserRecord{}, err
	}
	return ports.UserRecord{
		UserID:       row.UserID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}
