package repository

import (
	"errors"

	"course-commerce/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByCode(code string) (*model.Role, error)
	SeedDefaults() error
	GrantDefaults(privileges []model.Privilege) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Privileges").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) SeedDefaults() error {
	for _, defaultRole := range model.DefaultRoles {
		var existing model.Role
		err := r.db.Where("code = ?", defaultRole.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role := defaultRole
			if err := r.db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// GrantDefaults attaches privileges to roles that have none yet.
func (r *roleRepo) GrantDefaults(privileges []model.Privilege) error {
	roles, err := r.FindAll()
	if err != nil {
		return err
	}
	for i := range roles {
		role := &roles[i]
		if len(role.Privileges) > 0 {
			continue
		}
		var granted []model.Privilege
		for _, p := range privileges {
			if model.RoleGrants(role.Code, p.Code) {
				granted = append(granted, p)
			}
		}
		if len(granted) == 0 {
			continue
		}
		if err := r.db.Model(role).Association("Privileges").Replace(granted); err != nil {
			return err
		}
	}
	return nil
}
