package repository

import (
	"course-commerce/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrivilegeRepository interface {
	FindAll() ([]model.Privilege, error)
	FindByCodes(codes []string) ([]model.Privilege, error)
	SeedDefaults() error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

func (r *privilegeRepo) FindAll() ([]model.Privilege, error) {
	var privileges []model.Privilege
	err := r.db.Order("code").Find(&privileges).Error
	return privileges, err
}

func (r *privilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	var privileges []model.Privilege
	if len(codes) == 0 {
		return privileges, nil
	}
	err := r.db.Where("code IN ?", codes).Order("code").Find(&privileges).Error
	return privileges, err
}

// SeedDefaults inserts the built-in privileges; existing codes are left alone.
func (r *privilegeRepo) SeedDefaults() error {
	rows := make([]model.Privilege, len(model.DefaultPrivileges))
	copy(rows, model.DefaultPrivileges)
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&rows).Error
}
