package schema

import (
	"fmt"

	"gorm.io/gorm"

	catalogmodels "github.com/Skotchmaster/storefront/internal/catalog/models"
	ordermodels "github.com/Skotchmaster/storefront/internal/order/models"
	"github.com/Skotchmaster/storefront/internal/outbox"
)

func Models() []any {
	return []any{
		&catalogmodels.Product{},
		&ordermodels.Order{},
		&ordermodels.OrderItem{},
		&outbox.Event{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
