package query

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// StatementName derives the prepared statement name for sqlText.
// Identical SQL for the same table and operation always maps to the same
// name; different SQL maps to different names.
func StatementName(table, op, sqlText string) string {
	return fmt.Sprintf("%s_%s_%016x", table, op, xxh3.HashString(sqlText))
}
