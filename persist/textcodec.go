package persist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"library-management/library"
)

// The text form is one book per line:
//
//	ISBN|Title|Author|THEME|TotalCopies|AvailableCopies
//
// with the theme as the exact enum literal. Decoding is forgiving at
// the file level and strict at the record level: malformed lines
// (wrong field count, unparseable integers, unknown theme literal) are
// skipped with a warning rather than failing the whole file. Saving
// overwrites the file wholesale.

const textFieldCount = 6

// EncodeBooks writes the inventory in the line-oriented text form.
func EncodeBooks(w io.Writer, books []*library.Book) error {
	bw := bufio.NewWriter(w)
	for _, b := range books {
		_, err := fmt.Fprintf(bw, "%s|%s|%s|%s|%d|%d\n",
			b.ISBN, b.Title, b.Author, b.Theme, b.TotalCopies, b.AvailableCopies)
		if err != nil {
			return fmt.Errorf("write book line: %w", err)
		}
	}
	return bw.Flush()
}

// DecodeBooks reads the line-oriented text form, skipping malformed
// records with a warning.
func DecodeBooks(r io.Reader) ([]*library.Book, error) {
	var books []*library.Book
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		b, err := decodeBookLine(line)
		if err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("skipping malformed book record")
			continue
		}
		books = append(books, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read book lines: %w", err)
	}
	return books, nil
}

func decodeBookLine(line string) (*library.Book, error) {
	parts := strings.Split(line, "|")
	if len(parts) != textFieldCount {
		return nil, fmt.Errorf("want %d fields, got %d", textFieldCount, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	theme, ok := library.ThemeFromName(parts[3])
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", parts[3])
	}
	total, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, fmt.Errorf("total copies: %w", err)
	}
	available, err := strconv.Atoi(parts[5])
	if err != nil {
		return nil, fmt.Errorf("available copies: %w", err)
	}
	return library.NewBookWithAvailable(parts[0], parts[1], parts[2], theme, total, available)
}

// SaveBooksFile overwrites path with the text form of books.
func SaveBooksFile(path string, books []*library.Book) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create books file: %w", err)
	}
	defer f.Close()
	if err := EncodeBooks(f, books); err != nil {
		return err
	}
	return f.Close()
}

// LoadBooksFile reads the text form at path. A missing file is an empty
// inventory, not an error.
func LoadBooksFile(path string) ([]*library.Book, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open books file: %w", err)
	}
	defer f.Close()
	return DecodeBooks(f)
}
