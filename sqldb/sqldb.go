package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type DBer interface {
	CreateTable(t TableData) error
	DropTable(t TableData) error
	Insert(t TableData) error
	Close() error
}

type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field
	Args        []interface{}
	DataCount   int
	AutoKey     bool
}

type Sqldb struct {
	options
	db *sql.DB
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	d := &Sqldb{options: options}
	db, err := sql.Open("sqlite3", d.path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	d.db = db
	return d, nil
}

func (d *Sqldb) CreateTable(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("column can not be empty")
	}
	var cols []string
	if t.AutoKey {
		cols = append(cols, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	}
	for _, c := range t.ColumnNames {
		cols = append(cols, quote(c.Title)+" "+c.Type)
	}
	s := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", quote(t.TableName), strings.Join(cols, ","))
	d.logger.Debug("create table", zap.String("sql", s))
	_, err := d.db.Exec(s)
	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	s := fmt.Sprintf("DROP TABLE IF EXISTS %s;", quote(t.TableName))
	d.logger.Debug("drop table", zap.String("sql", s))
	_, err := d.db.Exec(s)
	return err
}

// Insert writes DataCount rows whose values are laid out consecutively in Args.
func (d *Sqldb) Insert(t TableData) error {
	if len(t.ColumnNames) == 0 || t.DataCount == 0 {
		return nil
	}
	if len(t.Args) != len(t.ColumnNames)*t.DataCount {
		return fmt.Errorf("insert %s: %d args for %d rows of %d columns",
			t.TableName, len(t.Args), t.DataCount, len(t.ColumnNames))
	}
	names := make([]string, len(t.ColumnNames))
	for i, c := range t.ColumnNames {
		names[i] = quote(c.Title)
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(t.ColumnNames)), ",") + ")"
	rows := strings.TrimSuffix(strings.Repeat(row+",", t.DataCount), ",")

	s := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;", quote(t.TableName), strings.Join(names, ","), rows)
	d.logger.Debug("insert", zap.String("table", t.TableName), zap.Int("rows", t.DataCount))
	_, err := d.db.Exec(s, t.Args...)
	return err
}

func (d *Sqldb) Close() error {
	return d.db.Close()
}

// Query exposes read access for callers that inspect exported tables.
func (d *Sqldb) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
