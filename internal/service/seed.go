package service

import (
	"fmt"
	"log"

	"course-commerce/internal/model"
	"course-commerce/internal/repository"
)

// SeedAccessControl creates default privileges and roles, grants role
// privileges, and creates the first MASTER_ADMIN account. Safe to rerun.
func SeedAccessControl(
	privilegeRepo repository.PrivilegeRepository,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	adminEmail, adminPassword string,
) error {
	// 1. Privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}

	// 2. Roles
	if err := roleRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	// 3. Role grants
	codes := make([]string, len(model.DefaultPrivileges))
	for i, p := range model.DefaultPrivileges {
		codes[i] = p.Code
	}
	defaults, err := privilegeRepo.FindByCodes(codes)
	if err != nil {
		return err
	}
	if err := roleRepo.GrantDefaults(defaults); err != nil {
		return fmt.Errorf("grant role privileges: %w", err)
	}

	// 4. Admin account
	if adminEmail == "" {
		return nil
	}
	adminEmail = normalizeEmail(adminEmail)
	exists, err := userRepo.EmailExists(adminEmail)
	if err != nil || exists {
		return err
	}

	master, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:      adminEmail,
		FullName:   "Master Administrator",
		RoleID:     &master.ID,
		IsActive:   true,
		Privileges: master.Privileges,
	}
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("✅ Admin user created: %s (MASTER_ADMIN)", adminEmail)
	return nil
}
