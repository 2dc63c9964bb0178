package database

import (
	"bookworm/internal/books"
	"bookworm/internal/cart"
	"bookworm/internal/events"
	"bookworm/internal/giftcards"
	"bookworm/internal/inventory"
	"bookworm/internal/orders"
	"bookworm/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&books.Book{},
		&inventory.Reservation{},
		&cart.CartItem{},
		&orders.Order{},
		&orders.OrderItem{},
		&orders.Payment{},
		&giftcards.GiftCard{},
		&events.StoreEvent{},
	)
}
