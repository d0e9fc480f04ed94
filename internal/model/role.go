package model

// Role groups the privileges handed to a user at creation.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleStudent     = "STUDENT"
)

var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full access to catalog and ledger",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Catalog and ledger operations without deletes",
	},
	{
		Code:        RoleStudent,
		Name:        "Student",
		Description: "Buys courses and reads own purchase history",
	},
}

// RoleGrants reports whether a default role receives a privilege code.
func RoleGrants(roleCode, privilegeCode string) bool {
	switch roleCode {
	case RoleMasterAdmin:
		return privilegeCode != PrivTransactionOwn
	case RoleAdmin:
		return privilegeCode != PrivTransactionOwn &&
			privilegeCode != PrivTransactionDelete &&
			privilegeCode != PrivCourseDelete
	case RoleStudent:
		return privilegeCode == PrivTransactionOwn
	}
	return false
}
