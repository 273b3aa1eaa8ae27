package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GeneratePaymentID produces a synthetic payment reference. Payments are
// simulated, so this only has to be unique.
func GeneratePaymentID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("pay_%d_%06d", timestamp, randomNum.Int64())
}

// NewID returns a random UUID v4 string.
func NewID() string {
	return uuid.NewString()
}
