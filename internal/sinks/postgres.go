package sinks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/generator"
)

const columnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND table_name = $2
ORDER BY ordinal_position`

// PostgresSink inserts records into an existing table. The table is reflected
// first; all rows are written in a single transaction.
type PostgresSink struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewPostgresSink(db *sql.DB, table string, log logger.Logger) *PostgresSink {
	return &PostgresSink{
		db:     db,
		table:  table,
		logger: log.WithFields(map[string]interface{}{"sink": NamePostgres, "table": table}),
	}
}

func (s *PostgresSink) Name() string { return NamePostgres }

func (s *PostgresSink) Deliver(ctx context.Context, records []*generator.Object) (*Report, error) {
	schemaName, tableName := splitTableName(s.table)

	columns, err := s.columns(ctx, schemaName, tableName)
	if err != nil {
		return nil, apperrors.NewSinkConnectionFailedError(NamePostgres, err)
	}
	if len(columns) == 0 {
		return nil, apperrors.NewTableNotFoundError(s.table)
	}

	for _, rec := range records {
		for _, key := range rec.Keys() {
			if _, ok := columns[key]; !ok {
				return nil, apperrors.NewInvalidRequestError(
					fmt.Sprintf("Column '%s' does not exist in table '%s'.", key, s.table),
					fmt.Sprintf("table: %s, column: %s", s.table, key))
			}
		}
	}

	if err := s.insert(ctx, schemaName, tableName, records); err != nil {
		s.logger.Error("insert rolled back", map[string]interface{}{"error": err.Error(), "records": len(records)})
		return nil, apperrors.NewDatabaseInsertFailedError(s.table, err)
	}

	report := newReport(s.Name())
	report.Delivered = len(records)
	s.logger.Info("records inserted", map[string]interface{}{"records": len(records)})
	return report, nil
}

func (s *PostgresSink) columns(ctx context.Context, schemaName, tableName string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, columnsQuery, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("reflect table %s: %w", s.table, err)
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = struct{}{}
	}
	return columns, rows.Err()
}

func (s *PostgresSink) insert(ctx context.Context, schemaName, tableName string, records []*generator.Object) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	target := pq.QuoteIdentifier(tableName)
	if schemaName != "" {
		target = pq.QuoteIdentifier(schemaName) + "." + target
	}

	for i, rec := range records {
		query, args, buildErr := insertStatement(target, rec)
		if buildErr != nil {
			err = fmt.Errorf("record %d: %w", i, buildErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			err = fmt.Errorf("record %d: %w", i, err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertStatement(target string, rec *generator.Object) (string, []interface{}, error) {
	keys := rec.Keys()
	if len(keys) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", target), nil, nil
	}

	cols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		v, _ := rec.Get(key)
		arg, err := columnValue(v)
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", key, err)
		}
		cols[i] = pq.QuoteIdentifier(key)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = arg
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		target, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

// columnValue stores nested objects and arrays as JSON text.
func columnValue(v interface{}) (interface{}, error) {
	switch v.(type) {
	case *generator.Object, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return v, nil
	}
}

// splitTableName accepts "table" or "schema.table".
func splitTableName(name string) (string, string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
