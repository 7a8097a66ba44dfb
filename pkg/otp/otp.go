package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
)

// Generator produces one-time codes for phone verification.
type Generator interface {
	Generate() (string, error)
}

// Sender delivers a code to a phone number. Production wires an SMS gateway;
// development logs the code instead.
type Sender interface {
	Send(phone, code string) error
}

type generator struct {
	digits int
}

func NewGenerator() Generator {
	return &generator{digits: 4}
}

func (g *generator) Generate() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < g.digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%0*d", g.digits, n), nil
}

type logSender struct {
	logger *zerolog.Logger
}

// NewLogSender returns a Sender that writes codes to the log. Used when no
// SMS gateway is configured.
func NewLogSender(logger *zerolog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(phone, code string) error {
	s.logger.Info().Str("phone", phone).Str("code", code).Msg("OTP issued")
	return nil
}
