package books

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookStatus is the shopper-facing stock badge, derived from the counters
// unless the catalog row pins an explicit status like Preorder.
type BookStatus string

const (
	StatusInStock  BookStatus = "In Stock"
	StatusLowStock BookStatus = "Low Stock"
	StatusShips    BookStatus = "Ships in 3-5 days"
	StatusPreorder BookStatus = "Preorder"
)

// Book is a catalog row synced from the point-of-sale system. The two
// counters at the bottom are owned by the inventory package; everything else
// is catalog data.
type Book struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ISBN            string     `json:"isbn" gorm:"uniqueIndex;not null;size:20"`
	Title           string     `json:"title" gorm:"not null;size:500"`
	Author          string     `json:"author" gorm:"not null;size:255;index"`
	Description     string     `json:"description" gorm:"type:text"`
	Price           float64    `json:"price" gorm:"not null;check:price >= 0"`
	Cost            *float64   `json:"cost,omitempty"`
	CoverURL        string     `json:"cover_url" gorm:"size:500"`
	Category        string     `json:"category" gorm:"size:100;index"`
	Genre           string     `json:"genre" gorm:"size:100"`
	BookType        string     `json:"book_type" gorm:"size:50"`
	Publisher       string     `json:"publisher" gorm:"size:255"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	PageCount       *int       `json:"page_count,omitempty"`
	Status          string     `json:"status" gorm:"size:50"`
	IsStaffPick     bool       `json:"is_staff_pick" gorm:"default:false;index"`
	StaffReviewer   string     `json:"staff_reviewer" gorm:"size:100"`
	StaffQuote      string     `json:"staff_quote" gorm:"type:text"`

	InventoryCount int `json:"inventory_count" gorm:"default:0;check:inventory_count >= 0"`
	ReservedCount  int `json:"reserved_count" gorm:"default:0;check:reserved_count >= 0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Book) TableName() string {
	return "books"
}

// DisplayStatus derives the stock badge. An explicit Preorder status on the
// row wins over the counters.
func (b *Book) DisplayStatus(lowStockThreshold int) BookStatus {
	if strings.EqualFold(b.Status, string(StatusPreorder)) {
		return StatusPreorder
	}
	if b.InventoryCount <= 0 {
		return StatusShips
	}
	if b.InventoryCount <= lowStockThreshold {
		return StatusLowStock
	}
	return StatusInStock
}

// titleSeparators in order of preference, matching common bibliographic style.
var titleSeparators = []string{": ", " - ", " — ", " – "}

// SplitTitle splits a full title into a main title and optional subtitle.
func SplitTitle(fullTitle string) (title, subtitle string) {
	for _, sep := range titleSeparators {
		if idx := strings.Index(fullTitle, sep); idx > 0 {
			return fullTitle[:idx], fullTitle[idx+len(sep):]
		}
	}
	return fullTitle, ""
}

// Request/response models

type ListBooksQuery struct {
	Category       string `form:"category"`
	Search         string `form:"search"`
	InStockOnly    bool   `form:"in_stock_only"`
	StaffPicksOnly bool   `form:"staff_picks_only"`
	Limit          int    `form:"limit,default=24"`
	Offset         int    `form:"offset,default=0"`
}

type CreateBookRequest struct {
	ISBN            string     `json:"isbn" binding:"required,min=10,max=20"`
	Title           string     `json:"title" binding:"required,min=1,max=500"`
	Author          string     `json:"author" binding:"required,min=1,max=255"`
	Description     string     `json:"description" binding:"max=10000"`
	Price           float64    `json:"price" binding:"required,min=0"`
	Cost            *float64   `json:"cost,omitempty"`
	CoverURL        string     `json:"cover_url" binding:"omitempty,url,max=500"`
	Category        string     `json:"category" binding:"max=100"`
	Genre           string     `json:"genre" binding:"max=100"`
	BookType        string     `json:"book_type" binding:"max=50"`
	Publisher       string     `json:"publisher" binding:"max=255"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	PageCount       *int       `json:"page_count,omitempty"`
	Status          string     `json:"status" binding:"max=50"`
	IsStaffPick     bool       `json:"is_staff_pick"`
	StaffReviewer   string     `json:"staff_reviewer" binding:"max=100"`
	StaffQuote      string     `json:"staff_quote" binding:"max=2000"`
	InventoryCount  int        `json:"inventory_count" binding:"min=0"`
}

type UpdateBookRequest struct {
	Title           *string    `json:"title,omitempty" binding:"omitempty,min=1,max=500"`
	Author          *string    `json:"author,omitempty" binding:"omitempty,min=1,max=255"`
	Description     *string    `json:"description,omitempty" binding:"omitempty,max=10000"`
	Price           *float64   `json:"price,omitempty" binding:"omitempty,min=0"`
	Cost            *float64   `json:"cost,omitempty"`
	CoverURL        *string    `json:"cover_url,omitempty" binding:"omitempty,url,max=500"`
	Category        *string    `json:"category,omitempty" binding:"omitempty,max=100"`
	Genre           *string    `json:"genre,omitempty" binding:"omitempty,max=100"`
	BookType        *string    `json:"book_type,omitempty" binding:"omitempty,max=50"`
	Publisher       *string    `json:"publisher,omitempty" binding:"omitempty,max=255"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	PageCount       *int       `json:"page_count,omitempty"`
	Status          *string    `json:"status,omitempty" binding:"omitempty,max=50"`
	IsStaffPick     *bool      `json:"is_staff_pick,omitempty"`
	StaffReviewer   *string    `json:"staff_reviewer,omitempty" binding:"omitempty,max=100"`
	StaffQuote      *string    `json:"staff_quote,omitempty" binding:"omitempty,max=2000"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// BookResponse is the shopper-facing shape: the raw counters stay internal,
// only the derived badge and title split go out.
type BookResponse struct {
	ID              string     `json:"id"`
	ISBN            string     `json:"isbn"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle,omitempty"`
	Author          string     `json:"author"`
	Description     string     `json:"description"`
	Price           float64    `json:"price"`
	CoverURL        string     `json:"cover_url"`
	Category        string     `json:"category"`
	Genre           string     `json:"genre"`
	BookType        string     `json:"book_type"`
	Publisher       string     `json:"publisher,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	PageCount       *int       `json:"page_count,omitempty"`
	Status          BookStatus `json:"status"`
	IsStaffPick     bool       `json:"is_staff_pick"`
	StaffReviewer   string     `json:"staff_reviewer,omitempty"`
	StaffQuote      string     `json:"staff_quote,omitempty"`
}

type ListBooksResponse struct {
	Books  []BookResponse `json:"books"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
