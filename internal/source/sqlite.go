package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/quarryql/quarry/internal/schema"
)

// SQLite loads the root context from a SQLite database.
//
// Conventions: each list-typed field of the query type reads a table of the
// same name; rows become records keyed by column name. A list-typed field of
// a nested object type reads the table named after that field, attaching
// rows whose `<parenttype>_id` column matches the parent row's `id`.
type SQLite struct {
	db  *sql.DB
	sch *schema.Schema
}

// OpenSQLite opens the database and binds it to the schema that names the
// tables to load.
func OpenSQLite(path string, sch *schema.Schema) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &SQLite{db: db, sch: sch}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Root loads every query-level collection with its nested relations into
// the generic record model.
func (s *SQLite) Root(ctx context.Context) (any, error) {
	root := map[string]any{}
	queryType := s.sch.GetQueryType()
	if queryType == nil {
		return nil, fmt.Errorf("query type '%s' is not registered", s.sch.QueryType)
	}
	for _, f := range queryType.Fields {
		if !f.Type.IsList() || f.Resolver.Expr != "" {
			continue
		}
		elemName := f.Type.GetNamedType()
		elemType := s.sch.Types[elemName]
		if elemType == nil || elemType.Kind != schema.TypeKindObject {
			continue
		}
		rows, err := s.loadTable(ctx, f.Name)
		if err != nil {
			return nil, err
		}
		if err := s.attachRelations(ctx, rows, elemType, map[string]bool{elemName: true}); err != nil {
			return nil, err
		}
		root[f.Name] = rows
	}
	return root, nil
}

// attachRelations fills list-typed fields of each row from the matching
// child tables. The onPath guard stops relation cycles.
func (s *SQLite) attachRelations(ctx context.Context, rows []any, t *schema.Type, onPath map[string]bool) error {
	parentKey := strings.ToLower(t.Name) + "_id"
	for _, f := range t.Fields {
		if !f.Type.IsList() || f.Resolver.Expr != "" {
			continue
		}
		childName := f.Type.GetNamedType()
		childType := s.sch.Types[childName]
		if childType == nil || childType.Kind != schema.TypeKindObject || onPath[childName] {
			continue
		}
		ok, err := s.tableExists(ctx, f.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		children, err := s.loadTable(ctx, f.Name)
		if err != nil {
			return err
		}
		onPath[childName] = true
		if err := s.attachRelations(ctx, children, childType, onPath); err != nil {
			return err
		}
		delete(onPath, childName)

		byParent := map[any][]any{}
		for _, child := range children {
			rec := child.(map[string]any)
			byParent[rec[parentKey]] = append(byParent[rec[parentKey]], child)
		}
		for _, row := range rows {
			rec := row.(map[string]any)
			matched := byParent[rec["id"]]
			if matched == nil {
				matched = []any{}
			}
			rec[f.Name] = matched
		}
	}
	return nil
}

func (s *SQLite) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return count > 0, nil
}

func (s *SQLite) loadTable(ctx context.Context, name string) ([]any, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}

	var out []any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan table %s: %w", name, err)
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			rec[col] = normalizeColumn(values[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func normalizeColumn(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
