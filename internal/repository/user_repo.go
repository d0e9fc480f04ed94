package repository

import (
	"course-commerce/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	EmailExists(email string) (bool, error)
	Create(user *model.User) error
	// StartSession stores a fresh token version, invalidating older tokens.
	StartSession(userID uuid.UUID, tokenVersion string) error
	// ChangePassword stores the hash and a new token version in one update.
	ChangePassword(userID uuid.UUID, hashedPassword, tokenVersion string) error
	TouchLastSeen(userID uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) withAccess() *gorm.DB {
	return r.db.Preload("Role").Preload("Privileges")
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.withAccess().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.withAccess().First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) EmailExists(email string) (bool, error) {
	var n int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) StartSession(userID uuid.UUID, tokenVersion string) error {
	return r.updateUser(userID, map[string]interface{}{
		"token_version": tokenVersion,
		"last_seen_at":  gorm.Expr("CURRENT_TIMESTAMP"),
	})
}

func (r *userRepo) ChangePassword(userID uuid.UUID, hashedPassword, tokenVersion string) error {
	return r.updateUser(userID, map[string]interface{}{
		"password":      hashedPassword,
		"token_version": tokenVersion,
	})
}

func (r *userRepo) TouchLastSeen(userID uuid.UUID) error {
	return r.updateUser(userID, map[string]interface{}{
		"last_seen_at": gorm.Expr("CURRENT_TIMESTAMP"),
	})
}

func (r *userRepo) updateUser(userID uuid.UUID, fields map[string]interface{}) error {
	res := r.db.Model(&model.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
