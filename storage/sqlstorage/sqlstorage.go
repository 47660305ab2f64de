// Package sqlstorage exports results into sqlite tables, one table per result
// name and one TEXT column per record field.
package sqlstorage

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wenzapen/tagcrawl/sqldb"
	"github.com/wenzapen/tagcrawl/storage"
)

type SQLStorage struct {
	dbs map[string]sqldb.DBer
	options
}

func New(opts ...Option) *SQLStorage {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &SQLStorage{
		options: options,
		dbs:     make(map[string]sqldb.DBer),
	}
}

func (s *SQLStorage) open(path string) (sqldb.DBer, error) {
	if db, ok := s.dbs[path]; ok {
		return db, nil
	}
	db, err := sqldb.New(
		sqldb.WithPath(path),
		sqldb.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	s.dbs[path] = db
	return db, nil
}

// Write replaces table name in the database at path with the records of value.
func (s *SQLStorage) Write(path, name string, value any) error {
	db, err := s.open(path)
	if err != nil {
		return err
	}
	rows := storage.Rows(value)
	cols := storage.Columns(rows)
	if len(cols) == 0 {
		cols = []string{"value"}
	}
	table := sqldb.TableData{
		TableName:   name,
		ColumnNames: getFields(cols),
		AutoKey:     true,
	}
	if err := db.DropTable(table); err != nil {
		return err
	}
	if err := db.CreateTable(table); err != nil {
		return err
	}

	for start := 0; start < len(rows); start += s.BatchCount {
		end := start + s.BatchCount
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.flush(db, table, cols, rows[start:end]); err != nil {
			return err
		}
	}
	s.logger.Info("exported to sqlite",
		zap.String("path", path),
		zap.String("table", name),
		zap.Int("rows", len(rows)))
	return nil
}

func getFields(cols []string) []sqldb.Field {
	fields := make([]sqldb.Field, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, sqldb.Field{Title: c, Type: "TEXT"})
	}
	return fields
}

func (s *SQLStorage) flush(db sqldb.DBer, table sqldb.TableData, cols []string, batch []map[string]any) error {
	args := make([]interface{}, 0, len(cols)*len(batch))
	for _, r := range batch {
		for _, c := range cols {
			args = append(args, storage.Cell(r[c]))
		}
	}
	table.Args = args
	table.DataCount = len(batch)
	return db.Insert(table)
}

func (s *SQLStorage) Close() error {
	var err error
	for path, db := range s.dbs {
		multierr.AppendInto(&err, db.Close())
		delete(s.dbs, path)
	}
	return err
}
