// Package config provides environment-based configuration.
//
// Loads from a .env file when present (godotenv), validates required fields,
// and fails fast on malformed values.
package config
