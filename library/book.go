package library

import (
	"fmt"
	"strings"
)

// Book represents one title in the inventory. Copies are tracked as two
// counters; AvailableCopies never leaves [0, TotalCopies]. A valid
// sequence of operations cannot break that invariant, only a
// programming error can.
type Book struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Theme           Theme  `json:"theme"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// NewBook creates a book with every copy on the shelf.
func NewBook(isbn, title, author string, theme Theme, totalCopies int) (*Book, error) {
	return NewBookWithAvailable(isbn, title, author, theme, totalCopies, totalCopies)
}

// NewBookWithAvailable creates a book with an explicit available count,
// as needed when rebuilding inventory from persisted records.
func NewBookWithAvailable(isbn, title, author string, theme Theme, totalCopies, availableCopies int) (*Book, error) {
	if strings.TrimSpace(isbn) == "" {
		return nil, validationf("isbn cannot be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, validationf("title cannot be empty")
	}
	if totalCopies < 0 {
		return nil, validationf("total copies cannot be negative")
	}
	if availableCopies < 0 || availableCopies > totalCopies {
		return nil, validationf("available copies must be between 0 and %d", totalCopies)
	}
	if author == "" {
		author = "Unknown"
	}
	if !theme.Valid() {
		theme = ThemeOther
	}
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Theme:           theme,
		TotalCopies:     totalCopies,
		AvailableCopies: availableCopies,
	}, nil
}

// IsAvailable reports whether at least one copy is on the shelf.
func (b *Book) IsAvailable() bool { return b.AvailableCopies > 0 }

// BorrowCopy takes one copy off the shelf.
func (b *Book) BorrowCopy() error {
	if b.AvailableCopies <= 0 {
		return statef("no copies of %q available to borrow", b.Title)
	}
	b.AvailableCopies--
	return nil
}

// ReturnCopy puts one copy back on the shelf.
func (b *Book) ReturnCopy() error {
	if b.AvailableCopies >= b.TotalCopies {
		return statef("all copies of %q are already returned", b.Title)
	}
	b.AvailableCopies++
	return nil
}

// AddCopies grows the inventory by n copies.
func (b *Book) AddCopies(n int) error {
	if n < 1 {
		return validationf("number of copies to add must be positive")
	}
	b.TotalCopies += n
	b.AvailableCopies += n
	return nil
}

// RemoveCopies shrinks the inventory by n copies. Only copies currently
// on the shelf can be removed.
func (b *Book) RemoveCopies(n int) error {
	if n < 1 || n > b.AvailableCopies {
		return validationf("invalid number of copies to remove, available: %d", b.AvailableCopies)
	}
	b.TotalCopies -= n
	b.AvailableCopies -= n
	return nil
}

// SetTitle replaces the title with the same validation as construction.
func (b *Book) SetTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return validationf("title cannot be empty")
	}
	b.Title = title
	return nil
}

// SetAuthor replaces the author, defaulting blank input to "Unknown".
func (b *Book) SetAuthor(author string) {
	if author == "" {
		author = "Unknown"
	}
	b.Author = author
}

// SetTheme replaces the theme, parsed leniently.
func (b *Book) SetTheme(theme string) {
	b.Theme = ParseTheme(theme)
}

// Summary formats the book for display lists.
func (b *Book) Summary() string {
	return fmt.Sprintf("%s %q by %s [%s] %d/%d available",
		b.ISBN, b.Title, b.Author, b.Theme, b.AvailableCopies, b.TotalCopies)
}
