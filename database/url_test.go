package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		dbName   string
		expected string
	}{
		{
			name:     "no database name returns base unchanged",
			baseURL:  "postgres://u:p@localhost:5432/ledger",
			dbName:   "",
			expected: "postgres://u:p@localhost:5432/ledger",
		},
		{
			name:     "appends name and sslmode",
			baseURL:  "postgres://u:p@localhost:5432/",
			dbName:   "ledger",
			expected: "postgres://u:p@localhost:5432/ledger?sslmode=disable",
		},
		{
			name:     "keeps explicit sslmode",
			baseURL:  "postgres://u:p@db:5432?sslmode=require",
			dbName:   "ledger",
			expected: "postgres://u:p@db:5432/ledger?sslmode=require",
		},
		{
			name:     "merges existing parameters",
			baseURL:  "postgres://u:p@db:5432?connect_timeout=5",
			dbName:   "ledger",
			expected: "postgres://u:p@db:5432/ledger?connect_timeout=5&sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
