// Package config loads gateway configuration from an optional config file,
// HERMES_-prefixed environment variables and built-in defaults, in that
// order of precedence (env over file over defaults). A missing config file
// is not an error.
//
// Watch re-reads the file on filesystem change events and hands the fresh
// configuration to a callback, so operators can adjust logging or backend
// endpoints without a restart.
package config
