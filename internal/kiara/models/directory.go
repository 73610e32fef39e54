package models

import "time"

// Client is a customer that places orders.
type Client struct {
	ID       uint   `gorm:"primaryKey"`
	Nombre   string `gorm:"size:120;not null"`
	Telefono string `gorm:"size:30;not null;index"`
}

func (Client) TableName() string { return "clientes" }

// Employee attends orders.
type Employee struct {
	ID       uint    `gorm:"primaryKey"`
	Nombre   string  `gorm:"size:120;not null;index"`
	Telefono *string `gorm:"size:30"`
	// Activo has no database default so that an explicit false is persisted.
	Activo   bool      `gorm:"not null"`
	CreadoEn time.Time `gorm:"autoCreateTime;not null"`
}

func (Employee) TableName() string { return "empleadas" }

// ClientUpdate carries a sparse patch for a Client.
type ClientUpdate struct {
	ID       uint
	Nombre   *string
	Telefono *string
}

// EmployeeUpdate carries a sparse patch for an Employee. An empty
// Telefono clears the stored phone.
type EmployeeUpdate struct {
	ID       uint
	Nombre   *string
	Telefono *string
	Activo   *bool
}

// DirectoryFilter narrows client and employee listings.
type DirectoryFilter struct {
	// Query is a case-insensitive substring of the name.
	Query string
	// Activo filters employees by their active flag.
	Activo *bool
}
