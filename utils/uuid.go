package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random user identifier
func GenerateID() string {
	return uuid.New().String()
}

