// Package otp implements the phone-number login challenge: request a code,
// then verify it against the challenge handle. Challenges live in Redis with a
// short TTL; only a hash of the code is stored, and the phone number is bound
// to the challenge server-side so it cannot be swapped between steps.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	challengeTTL    = 5 * time.Minute
	challengePrefix = "otp:challenge:"
)

var (
	// ErrInvalidPhone is returned for numbers that are not 10 digits.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrInvalidCode is returned when the submitted code does not match.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrChallengeExpired is returned when the challenge handle is unknown or
	// its TTL has passed.
	ErrChallengeExpired = errors.New("verification challenge expired")
)

// Sender is the outbound SMS boundary, satisfied by sms.Sender implementations.
type Sender interface {
	Send(to string, message string) error
}

// Service issues and verifies login challenges.
type Service struct {
	rdb    *redis.Client
	sender Sender
}

// NewService creates an OTP service on the given Redis client and SMS sender.
func NewService(rdb *redis.Client, sender Sender) *Service {
	return &Service{rdb: rdb, sender: sender}
}

type challenge struct {
	Phone    string `json:"phone"`
	CodeHash string `json:"code_hash"`
}

// ValidLocalPhone reports whether the number is a 10-digit local number.
// Country code prefixing is the caller's job.
func ValidLocalPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RequestCode validates the phone number, generates a 6-digit code, stores its
// hash under a fresh challenge id and sends the code out. Returns the
// challenge id the caller must submit together with the code.
func (s *Service) RequestCode(ctx context.Context, phone string) (string, error) {
	if !ValidLocalPhone(phone) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(challenge{Phone: phone, CodeHash: hashCode(code)})
	if err != nil {
		return "", err
	}

	challengeID := uuid.NewString()
	if err := s.rdb.Set(ctx, challengePrefix+challengeID, payload, challengeTTL).Err(); err != nil {
		return "", fmt.Errorf("store challenge: %w", err)
	}

	if err := s.sender.Send(phone, fmt.Sprintf("Your PaperRoute login code is %s", code)); err != nil {
		// The challenge is unusable without the code; drop it.
		s.rdb.Del(ctx, challengePrefix+challengeID)
		return "", fmt.Errorf("send code: %w", err)
	}

	return challengeID, nil
}

// VerifyCode checks the submitted code against the stored challenge and
// returns the phone number the challenge was issued for. The challenge is
// consumed on success so a code cannot be replayed.
func (s *Service) VerifyCode(ctx context.Context, challengeID, code string) (string, error) {
	key := challengePrefix + challengeID
	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrChallengeExpired
	}
	if err != nil {
		return "", fmt.Errorf("load challenge: %w", err)
	}

	var ch challenge
	if err := json.Unmarshal([]byte(stored), &ch); err != nil {
		return "", fmt.Errorf("decode challenge: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(ch.CodeHash), []byte(hashCode(code))) != 1 {
		return "", ErrInvalidCode
	}

	s.rdb.Del(ctx, key)
	return ch.Phone, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
