package infrastructure

import (
	"github.com/google/uuid"
)

// GenerateUUID gera identificadores aleatórios (UUID v4).
func GenerateUUID() string {
	return uuid.New().String()
}
