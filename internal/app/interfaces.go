package app

import (
	"github.com/talkincode/farmstock/config"
	"github.com/talkincode/farmstock/internal/inventory"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// InventoryProvider provides the product and category service
type InventoryProvider interface {
	Inventory() *inventory.Service
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	InventoryProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb() error
	DropAll()
}
