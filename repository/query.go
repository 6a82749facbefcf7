package repository

import (
	"fmt"
	"strings"
)

// DefaultQueryLimit is applied when a caller passes a non-positive
// limit to QueryLogs.
const DefaultQueryLimit = 1000

// BuildLogQuery assembles the SELECT statement for a stream's log
// search. The filter fragment is appended verbatim after WHERE; any
// escaping or validation of user-entered filters must happen before
// this point, as must identifier-escaping of the stream name. Results
// are always newest-first on p_timestamp.
func BuildLogQuery(stream, filterSQL string, limit int) string {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	var b strings.Builder
	b.WriteString(`SELECT * FROM "`)
	b.WriteString(stream)
	b.WriteString(`"`)
	if strings.TrimSpace(filterSQL) != "" {
		b.WriteString(" WHERE ")
		b.WriteString(filterSQL)
	}
	b.WriteString(" ORDER BY p_timestamp DESC")
	fmt.Fprintf(&b, " LIMIT %d", limit)
	return b.String()
}
