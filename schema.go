package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ValidateTable checks that the table described by expected exists in db and
// that every expected column is present with the same type and nullability.
// Extra columns in the database are allowed. Types are compared case
// insensitively. A mismatch wraps ErrSchemaMismatch and lists every problem.
func ValidateTable(ctx context.Context, d Definer, db *sql.DB, expected Table) error {
	if err := expected.Validate(); err != nil {
		return err
	}

	exists, err := d.TableExists(ctx, db, expected.Name)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}

	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist: %w", expected.Name, ErrSchemaMismatch)
	}

	columns, err := d.Columns(ctx, db, expected.Name)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}

	actualColumns := make(map[string]Column, len(columns))
	for _, c := range columns {
		actualColumns[c.Name] = c
	}

	var missingColumns []string
	var mismatchedColumns []string

	for _, want := range expected.Columns {
		actual, ok := actualColumns[want.Name]
		if !ok {
			missingColumns = append(missingColumns, want.Name)
			continue
		}

		if !strings.EqualFold(actual.Type, want.Type) {
			mismatchedColumns = append(mismatchedColumns,
				fmt.Sprintf("%s: expected %s, got %s", want.Name, strings.ToLower(want.Type), strings.ToLower(actual.Type)))
		}

		// primary key columns are implicitly NOT NULL in most engines
		if actual.Nullable != want.Nullable && !want.PrimaryKey {
			mismatchedColumns = append(mismatchedColumns,
				fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", want.Name, want.Nullable, actual.Nullable))
		}
	}

	if len(missingColumns) == 0 && len(mismatchedColumns) == 0 {
		return nil
	}

	var errMsg strings.Builder
	fmt.Fprintf(&errMsg, "table %s schema validation failed:\n", expected.Name)

	if len(missingColumns) > 0 {
		fmt.Fprintf(&errMsg, "  missing columns: %s\n", strings.Join(missingColumns, ", "))
	}

	if len(mismatchedColumns) > 0 {
		fmt.Fprintf(&errMsg, "  mismatched columns:\n")
		for _, msg := range mismatchedColumns {
			fmt.Fprintf(&errMsg, "    - %s\n", msg)
		}
	}

	return fmt.Errorf("%s%w", errMsg.String(), ErrSchemaMismatch)
}
