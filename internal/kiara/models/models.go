// Package models contains the persistence models of the inventory and
// order API, configured to work using GORM as the ORM. Table and column
// names follow the existing database schema.
package models

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Client{},
		&Employee{},
		&Brand{},
		&ProductCategory{},
		&ServiceCategory{},
		&Product{},
		&Service{},
		&Order{},
		&OrderItem{},
		&User{},
	}
}
