package config

import (
	"os"
	"strings"
)

const defaultAPIURL = "http://localhost:3000"

// APIURL returns the base URL of the users API.
// It can be overridden with the USERS_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("USERS_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}
