package repository

import (
	"context"
	"time"

	"example.com/freightline/services/settlement/internal/models"

	"github.com/google/uuid"
)

func (r *repo) CreateUser(ctx context.Context, user *models.User) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Create(user).Error)
}

func (r *repo) UpdateUser(ctx context.Context, user *models.User) error {
	gormDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return translateError(gormDB.WithContext(ctx).Save(user).Error)
}

func (r *repo) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := gormDB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := gormDB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

// FindUserByResetToken looks up a user by the hashed reset token,
// ignoring expired tokens
func (r *repo) FindUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	gormDB, err := r.db.DB()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := gormDB.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expires > ?", tokenHash, time.Now()).
		First(&user).Error; err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}
