package database

import (
	"fmt"
	"net/url"
	"strings"
)

// ConstructDatabaseURL joins a server URL and a database name into a connection URL.
// sslmode=disable is appended when the URL does not specify an sslmode.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, _ := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/")

	values, err := url.ParseQuery(query)
	if err != nil {
		// Leave malformed query strings alone and let pgx report the problem
		return fmt.Sprintf("%s/%s?%s", base, databaseName, query)
	}
	if values.Get("sslmode") == "" {
		values.Set("sslmode", "disable")
	}

	return fmt.Sprintf("%s/%s?%s", base, databaseName, values.Encode())
}
