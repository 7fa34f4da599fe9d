// Command seed wipes the snapshot store and fills it with a demo
// catalog, a handful of members, and one staff account. Useful for
// trying the CLI without typing a catalog in by hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"library-management/library"
	"library-management/persist"
)

type seedBook struct {
	isbn   string
	title  string
	author string
	theme  library.Theme
	copies int
}

type seedPerson struct {
	name     string
	surname  string
	age      int
	email    string
	password string
	tier     library.PlanTier
}

var seedBooks = []seedBook{
	{"978-0-452-28423-4", "1984", "George Orwell", library.ThemeFiction, 4},
	{"978-0-452-28424-1", "Animal Farm", "George Orwell", library.ThemeFiction, 3},
	{"978-0-553-57712-9", "The Diary of a Young Girl", "Anne Frank", library.ThemeBiography, 2},
	{"978-1-59030-963-7", "The Art of War", "Sun Tzu", library.ThemeHistory, 2},
	{"978-0-618-57494-2", "The Fellowship of the Ring", "J.R.R. Tolkien", library.ThemeFiction, 5},
	{"978-0-618-57495-9", "The Two Towers", "J.R.R. Tolkien", library.ThemeFiction, 5},
	{"978-0-618-57496-6", "The Return of the King", "J.R.R. Tolkien", library.ThemeFiction, 5},
	{"978-0-7475-3269-9", "Harry Potter and the Philosopher's Stone", "J.K. Rowling", library.ThemeChildren, 6},
	{"978-0-7475-3849-3", "Harry Potter and the Chamber of Secrets", "J.K. Rowling", library.ThemeChildren, 6},
	{"978-0-7432-7356-5", "A Brief History of Time", "Stephen Hawking", library.ThemeScience, 3},
	{"978-0-13-468599-1", "The Pragmatic Programmer", "Andrew Hunt", library.ThemeTechnology, 4},
	{"978-0-7432-7357-2", "Romeo and Juliet", "William Shakespeare", library.ThemeFiction, 3},
	{"978-0-14-044926-6", "The Three Musketeers", "Alexandre Dumas", library.ThemeFiction, 2},
	{"978-0-375-70270-1", "The Republic", "Plato", library.ThemePolitics, 2},
}

var seedMembers = []seedPerson{
	{"Alice", "Nguyen", 29, "alice@example.com", "reading1", library.TierVIP},
	{"Bob", "Martin", 41, "bob@example.com", "reading2", library.TierPremium},
	{"Carol", "Okafor", 35, "carol@example.com", "reading3", library.TierBasic},
	{"Dan", "Silva", 19, "", "", library.TierBasic},
}

func main() {
	dataDir := flag.String("data-dir", "data", "data directory")
	libraryName := flag.String("library-name", "Community Library", "library display name")
	flag.Parse()

	dbPath := filepath.Join(*dataDir, "library.db")

	fmt.Println("Cleaning up existing database files...")
	for _, suffix := range []string{"", "-shm", "-wal"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: could not remove %s: %v\n", dbPath+suffix, err)
		}
	}

	st, err := persist.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	lib := library.NewLibrary(*libraryName)

	fmt.Println("Seeding catalog...")
	bookCount := 0
	for _, b := range seedBooks {
		if _, err := lib.AddBook(b.isbn, b.title, b.author, b.theme, b.copies); err != nil {
			fmt.Printf("Warning: skipping %q: %v\n", b.title, err)
			continue
		}
		bookCount++
	}

	fmt.Println("Seeding members...")
	memberCount := 0
	for _, p := range seedMembers {
		m, err := lib.AddMember(p.name, p.surname, p.age, p.email, p.password)
		if err != nil {
			fmt.Printf("Warning: skipping %s %s: %v\n", p.name, p.surname, err)
			continue
		}
		if p.tier != library.TierBasic {
			m.UpgradePlan(p.tier, time.Now())
		}
		memberCount++
	}

	if _, err := lib.AddStaff("Erin", "Kowalski", 38, "erin@example.com", "shelving1", "EMP-0001"); err != nil {
		fmt.Printf("Warning: skipping staff account: %v\n", err)
	}

	if err := st.SaveLibrary(lib); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving library: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSeed complete: %d books, %d members, 1 staff.\n", bookCount, memberCount)
	fmt.Printf("%-22s %-42s %-22s\n", "ISBN", "Title", "Author")
	fmt.Println(strings.Repeat("-", 88))
	for _, b := range lib.Books() {
		fmt.Printf("%-22s %-42s %-22s\n", b.ISBN, truncate(b.Title, 42), truncate(b.Author, 22))
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
