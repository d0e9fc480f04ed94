package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "transaction:update"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivCourseCreate      = "course:create"
	PrivCourseUpdate      = "course:update"
	PrivCourseDelete      = "course:delete"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivTransactionUpdate = "transaction:update"
	PrivTransactionDelete = "transaction:delete"
	PrivTransactionOwn    = "transaction:own"
)

var DefaultPrivileges = []Privilege{
	// Catalog
	{Code: PrivCourseCreate, Name: "Create Course"},
	{Code: PrivCourseUpdate, Name: "Update Course"},
	{Code: PrivCourseDelete, Name: "Delete Course"},
	// Ledger
	{Code: PrivTransactionView, Name: "View Transaction"},
	{Code: PrivTransactionCreate, Name: "Create Manual Transaction"},
	{Code: PrivTransactionUpdate, Name: "Update Transaction"},
	{Code: PrivTransactionDelete, Name: "Delete Transaction"},
	// Purchaser
	{Code: PrivTransactionOwn, Name: "View Own Transactions"},
}
