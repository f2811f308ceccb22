package config

import "github.com/joho/godotenv"

// LoadEnv loads a .env file from the working directory if one exists.
// Missing files are reported so callers can decide whether to continue.
func LoadEnv() error {
	return godotenv.Load()
}
