package datarecording

import (
	"fmt"
	"reflect"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectMySQL
)

func dialectOf(driver string) (dialect, error) {
	switch driver {
	case "sqlite3":
		return dialectSQLite, nil
	case "mysql":
		return dialectMySQL, nil
	default:
		return 0, fmt.Errorf("unsupported driver %q", driver)
	}
}

// columnType maps a Go kind to the SQL type of the column storing it.
func (d dialect) columnType(kind reflect.Kind) (string, bool) {
	switch kind {
	case reflect.Bool:
		if d == dialectMySQL {
			return "BOOLEAN", true
		}

		return "INTEGER", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		if d == dialectMySQL {
			return "BIGINT", true
		}

		return "INTEGER", true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		if d == dialectMySQL {
			return "BIGINT UNSIGNED", true
		}

		return "INTEGER", true
	case reflect.Float32, reflect.Float64:
		if d == dialectMySQL {
			return "DOUBLE", true
		}

		return "REAL", true
	case reflect.String:
		return "TEXT", true
	default:
		return "", false
	}
}
