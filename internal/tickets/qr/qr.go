package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
)

// Payload is the data bound into a ticket's QR token. A displayed code
// cannot be replayed against a different ticket, event, user or seat.
type Payload struct {
	TicketID   string    `json:"ticket_id"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	SeatNumber string    `json:"seat_number"`
	IssuedAt   time.Time `json:"issued_at"`
}

var ErrInvalidToken = errors.New("invalid QR token")

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// Sign serializes the payload and appends an HMAC-SHA256 signature.
// The result is the opaque string stored on the ticket.
func (g *Generator) Sign(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write(data)

	body := base64.RawURLEncoding.EncodeToString(data)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return body + "." + sig, nil
}

// Verify authenticates a token and returns its payload.
func (g *Generator) Verify(token string) (*Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write(data)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrInvalidToken
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrInvalidToken
	}
	return &payload, nil
}

// EncodePNG renders a token as a QR image for display at the gate.
func EncodePNG(token string) ([]byte, error) {
	return qrcode.Encode(token, qrcode.Medium, 256)
}
