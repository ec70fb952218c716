package journal

import (
	"context"
	"fmt"
)

// Backend types accepted by Open.
const (
	TypeJSON     = "json"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Options selects and configures a Store.
type Options struct {
	Type   string
	Path   string
	DBPath string
	DSN    string
}

// Open returns the Store described by opts. An empty type means json.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", TypeJSON:
		return NewFile(opts.Path)
	case TypeSQLite:
		if opts.DBPath == "" {
			return nil, fmt.Errorf("journal: sqlite requires db_path")
		}
		return NewSQLite(opts.DBPath)
	case TypePostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("journal: postgres requires dsn")
		}
		return NewPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("journal: unknown type %q", opts.Type)
	}
}
