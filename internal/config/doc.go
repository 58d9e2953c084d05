// Package config loads service configuration with viper from an optional
// config.yaml and from CARDSORT_* environment variables, then validates it
// with go-playground/validator.
package config
