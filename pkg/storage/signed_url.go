package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const tokenParts = 4 // rosterID . expiry . encoded name . signature

// SignedURLSigner mints and validates roster download tokens. A token carries
// the roster ID, the stored file name and an expiry, bound together by an
// HMAC so the download route needs no session of its own.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate returns a signed token referencing the roster and its export file.
func (s *SignedURLSigner) Generate(rosterID, name string) (string, time.Time, error) {
	if rosterID == "" || name == "" {
		return "", time.Time{}, fmt.Errorf("rosterID and name required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(name))
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{rosterID, expiry, encoded, s.sign(rosterID, expiry, encoded)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded metadata. When allowExpired
// is true the timestamp check is skipped, which cleanup routines use to map
// stale tokens back to their files.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (rosterID, name string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != tokenParts {
		return "", "", time.Time{}, fmt.Errorf("invalid token format")
	}
	rosterID, expiry, encoded, signature := parts[0], parts[1], parts[2], parts[3]

	rawName, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode name: %w", err)
	}
	expUnix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)

	if !hmac.Equal([]byte(s.sign(rosterID, expiry, encoded)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("invalid token signature")
	}
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("token expired")
	}
	return rosterID, string(rawName), expiresAt, nil
}

func (s *SignedURLSigner) sign(rosterID, expiry, encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%s|%s", rosterID, expiry, encoded)
	return hex.EncodeToString(mac.Sum(nil))
}
