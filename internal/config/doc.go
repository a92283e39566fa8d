// Package config loads and validates application configuration from
// environment variables (PLANNER_ prefix) and an optional config file,
// using viper for loading and go-playground/validator for validation.
package config
