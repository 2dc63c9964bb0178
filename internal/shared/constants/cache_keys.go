package constants

import (
	"fmt"
	"time"
)

// Cache key prefixes. Keys are namespaced so DeletePattern can invalidate a
// whole family when admin writes change the catalog.
const (
	PrefixBook         = "bookworm:book"
	PrefixBookList     = "bookworm:books"
	PrefixAvailability = "bookworm:availability"
	PrefixStoreEvents  = "bookworm:events"
)

// Cache TTLs. Availability is cached briefly since concurrent reservations
// change the answer between a read and a subsequent reserve anyway.
const (
	TTLBook         = 10 * time.Minute
	TTLBookList     = 5 * time.Minute
	TTLAvailability = 15 * time.Second
	TTLStoreEvents  = 5 * time.Minute
)

func BuildBookKey(bookID string) string {
	return fmt.Sprintf("%s:%s", PrefixBook, bookID)
}

func BuildBookListKey(category string, staffPicks, inStockOnly bool, limit, offset int) string {
	return fmt.Sprintf("%s:%s:%t:%t:%d:%d", PrefixBookList, category, staffPicks, inStockOnly, limit, offset)
}

func BuildAvailabilityKey(bookID string) string {
	return fmt.Sprintf("%s:%s", PrefixAvailability, bookID)
}

func BookListPattern() string {
	return PrefixBookList + ":*"
}
