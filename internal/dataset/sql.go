package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open connects to a database holding the reference table. driver is
// "mysql" or "postgres".
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}
	return db, nil
}

// LoadSQL reads the reference dataset from table, ordered by its id column.
// The table has the same columns as the CSV form.
func LoadSQL(ctx context.Context, db *sql.DB, table string) (*Dataset, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid dataset table name %q", table)
	}
	q := `SELECT contrast, correlation, energy, homogeneity, label FROM ` + table + ` ORDER BY id`

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("can't query dataset: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var v feature.Vector
		var label string
		if err := rows.Scan(&v[0], &v[1], &v[2], &v[3], &label); err != nil {
			return nil, fmt.Errorf("can't scan dataset row: %w", err)
		}
		if !v.Finite() {
			return nil, fmt.Errorf("dataset row %d: non-finite descriptor", len(records))
		}
		records = append(records, Record{Descriptor: v, Label: label, Index: len(records)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read dataset: %w", err)
	}
	return New(records)
}
