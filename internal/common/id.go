package common

import (
	"github.com/google/uuid"
)

// NewFundamentalsID generates a unique record ID with the "fd_" prefix
// Format: fd_<uuid>
func NewFundamentalsID() string {
	return "fd_" + uuid.New().String()
}
