package main

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// config holds the CLI's file-backed settings. Flags override file
// values; the file is optional.
type config struct {
	LibraryName string `toml:"library_name"`
	DataDir     string `toml:"data_dir"`
	BooksFile   string `toml:"books_file"`
}

func defaultConfig() config {
	return config{
		LibraryName: "Community Library",
		DataDir:     "data",
		BooksFile:   "books.txt",
	}
}

// defaultConfigPath returns ~/.library/config.toml when the home
// directory is resolvable.
func defaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".library", "config.toml")
	}
	return ""
}

// loadConfig reads the TOML config at path, falling back to defaults
// when the file does not exist. An explicit path that cannot be read is
// an error; the default path is best-effort.
func loadConfig(path string, explicit bool) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.LibraryName == "" {
		cfg.LibraryName = defaultConfig().LibraryName
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultConfig().DataDir
	}
	if cfg.BooksFile == "" {
		cfg.BooksFile = defaultConfig().BooksFile
	}
	return cfg, nil
}

func (c config) dbPath() string {
	return filepath.Join(c.DataDir, "library.db")
}
