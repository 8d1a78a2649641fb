package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

const itemColumns = `id, name, description, type, nation, price, image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (MenuItem, error) {
	var it MenuItem
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Type, &it.Nation,
		&it.Price, &it.ImageURL, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]MenuItem, error) {
	var out []MenuItem

	ids := f.IDs
	if ids == nil {
		ids = []string{}
	}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+itemColumns+`
			FROM menu_items
			WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' ESCAPE '\')
			  AND (cardinality($2::text[]) = 0 OR id = ANY($2::text[]))
			ORDER BY created_at DESC, id DESC
		`, escapeLike(strings.TrimSpace(f.Query)), ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]MenuItem, 0, 16)
		for rows.Next() {
			it, err := scanItem(rows)
			if err != nil {
				return err
			}
			out = append(out, it)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (MenuItem, bool, error) {
	var (
		it  MenuItem
		err error
	)

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		it, err = scanItem(s.db.QueryRowContext(ctx, `
			SELECT `+itemColumns+`
			FROM menu_items
			WHERE id = $1
		`, id))
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		return MenuItem{}, false, nil
	}
	if err != nil {
		return MenuItem{}, false, err
	}
	return it, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, it MenuItem) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO menu_items (`+itemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, it.ID, it.Name, it.Description, it.Type, it.Nation, it.Price, it.ImageURL, it.CreatedAt, it.UpdatedAt)
		return err
	})
}

func (s *PostgresStore) Update(ctx context.Context, it MenuItem) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE menu_items
			SET name = $2, description = $3, type = $4, nation = $5,
			    price = $6, image_url = $7, updated_at = $8
			WHERE id = $1
		`, it.ID, it.Name, it.Description, it.Type, it.Nation, it.Price, it.ImageURL, it.UpdatedAt)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
}

func (s *PostgresStore) PutFile(ctx context.Context, f File) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO files (id, name, content_type, data, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, f.ID, f.Name, f.ContentType, f.Data, f.CreatedAt)
		return err
	})
}

func (s *PostgresStore) GetFile(ctx context.Context, id string) (File, bool, error) {
	var f File

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, name, content_type, data, created_at
			FROM files
			WHERE id = $1
		`, id).Scan(&f.ID, &f.Name, &f.ContentType, &f.Data, &f.CreatedAt)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return File{}, false, nil
	}
	if err != nil {
		return File{}, false, err
	}
	f.Size = len(f.Data)
	return f, true, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
