// Package seams reaches its dependencies through factories and package-level function values.
package seams

import "fmt"

// Table is one table of a Database.
type Table interface {
	Count() int
	Insert(row map[string]any) error
}

// Database hands out tables by name.
type Database interface {
	Table(name string) Table
}

// Client fetches documents from a remote service.
type Client interface {
	Fetch(path string) ([]byte, error)
}

// Deps are the functions Download calls out through.
type Deps struct {
	Getenv func(key string) string
	Dial   func(addr string) Client
}

const defaultAddr = "localhost:8080"

// Count reports the row count of each table.
func Count(db Database, tables ...string) map[string]int {
	counts := make(map[string]int, len(tables))
	for _, name := range tables {
		counts[name] = db.Table(name).Count()
	}

	return counts
}

// Archive inserts row into the archive table.
func Archive(db Database, row map[string]any) error {
	err := db.Table("archive").Insert(row)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	return nil
}

// Download fetches path from the service at $API_ADDR.
func Download(deps Deps, path string) ([]byte, error) {
	addr := deps.Getenv("API_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	body, err := deps.Dial(addr).Fetch(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", path, addr, err)
	}

	return body, nil
}
