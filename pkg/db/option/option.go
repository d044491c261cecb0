// Package option composes reusable gorm query clauses.
package option

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Where adds a raw condition.
func Where(query string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// ColumnIn matches column against any of values.
func ColumnIn(column string, values []any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.IN{Column: clause.Column{Name: column}, Values: values})
	})
}

// Compare applies column <op> value for op in =, >=, <=.
func Compare(column, op string, value any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		switch op {
		case "=":
			return db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
		case ">=":
			return db.Where(clause.Gte{Column: clause.Column{Name: column}, Value: value})
		case "<=":
			return db.Where(clause.Lte{Column: clause.Column{Name: column}, Value: value})
		default:
			_ = db.AddError(fmt.Errorf("unsupported comparison %q", op))
			return db
		}
	})
}

// OrderBy sorts by column.
func OrderBy(column string, desc bool) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	})
}

func Limit(n int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	})
}

// NullsFirst orders NULL values of column ahead of set ones, or after them
// when desc. column must be a trusted identifier.
func NullsFirst(column string, desc bool) QueryOption {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(fmt.Sprintf("CASE WHEN %s IS NULL THEN 0 ELSE 1 END %s", column, dir))
	})
}
