package warehouse

import (
	"errors"
	"strings"
)

const queryShowDatabases = `SHOW DATABASES`

// ErrInvalidIdentifier is returned for an empty database or table name.
var ErrInvalidIdentifier = errors.New("invalid identifier")

func queryShowTables(db string) (string, error) {
	q, err := quoteIdent(db)
	if err != nil {
		return "", err
	}
	return "SHOW TABLES IN " + q, nil
}

func queryShowColumns(db, table string) (string, error) {
	qdb, err := quoteIdent(db)
	if err != nil {
		return "", err
	}
	qtable, err := quoteIdent(table)
	if err != nil {
		return "", err
	}
	return "SHOW COLUMNS IN " + qdb + "." + qtable, nil
}

// quoteIdent wraps name in backticks, doubling any embedded backtick.
func quoteIdent(name string) (string, error) {
	if name == "" {
		return "", ErrInvalidIdentifier
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`", nil
}
