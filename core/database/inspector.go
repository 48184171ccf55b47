package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// ColumnDef describes a column for EnsureColumns.
type ColumnDef struct {
	Name string
	Type string
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		// SQLite uses PRAGMA table_info
		type SQLiteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []SQLiteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			columns = append(columns, ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
			})
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// EnsureColumns adds any of the wanted columns that are missing from the table.
// Existing columns are left untouched; batches ingested under an older schema
// keep their data and later batches simply gain the new fields.
func EnsureColumns(db *gorm.DB, tableName string, wanted []ColumnDef) ([]string, error) {
	existing, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(existing))
	for _, col := range existing {
		present[col.Field] = struct{}{}
	}

	var added []string
	for _, col := range wanted {
		if _, ok := present[strings.ToLower(col.Name)]; ok {
			continue
		}

		alterSQL := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, col.Name, col.Type)
		if err := db.Exec(alterSQL).Error; err != nil {
			return added, fmt.Errorf("failed to add column %s.%s: %w", tableName, col.Name, err)
		}
		added = append(added, col.Name)
	}

	return added, nil
}
