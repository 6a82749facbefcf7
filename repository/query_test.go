package repository

import "testing"

func TestBuildLogQuery(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		filter   string
		limit    int
		expected string
	}{
		{
			name:     "no filter",
			stream:   "events",
			filter:   "",
			limit:    1000,
			expected: `SELECT * FROM "events" ORDER BY p_timestamp DESC LIMIT 1000`,
		},
		{
			name:     "with filter",
			stream:   "events",
			filter:   "level='error'",
			limit:    50,
			expected: `SELECT * FROM "events" WHERE level='error' ORDER BY p_timestamp DESC LIMIT 50`,
		},
		{
			name:     "blank filter is omitted entirely",
			stream:   "events",
			filter:   "   ",
			limit:    10,
			expected: `SELECT * FROM "events" ORDER BY p_timestamp DESC LIMIT 10`,
		},
		{
			name:     "zero limit falls back to default",
			stream:   "app",
			filter:   "",
			limit:    0,
			expected: `SELECT * FROM "app" ORDER BY p_timestamp DESC LIMIT 1000`,
		},
		{
			name:     "negative limit falls back to default",
			stream:   "app",
			filter:   "",
			limit:    -5,
			expected: `SELECT * FROM "app" ORDER BY p_timestamp DESC LIMIT 1000`,
		},
		{
			name:     "filter fragment passes through verbatim",
			stream:   "app",
			filter:   `status >= 500 AND method = 'GET'`,
			limit:    25,
			expected: `SELECT * FROM "app" WHERE status >= 500 AND method = 'GET' ORDER BY p_timestamp DESC LIMIT 25`,
		},
		{
			name:     "pre-escaped stream name is embedded as given",
			stream:   `odd""name`,
			filter:   "",
			limit:    1,
			expected: `SELECT * FROM "odd""name" ORDER BY p_timestamp DESC LIMIT 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildLogQuery(tt.stream, tt.filter, tt.limit)
			if got != tt.expected {
				t.Errorf("BuildLogQuery(%q, %q, %d) = %q, want %q", tt.stream, tt.filter, tt.limit, got, tt.expected)
			}
		})
	}
}
