package security

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
)

// MaxPasswordBytes is the bcrypt input limit. Multi-byte characters count
// once per byte.
const MaxPasswordBytes = 72

const legacyPrefix = "pbkdf2:"

// werkzeug wrote the iteration count into every hash it generated; this is
// only used for hand-made rows that omit it.
const legacyDefaultIterations = 260000

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a stored hash with a plaintext password. Both bcrypt
// hashes and werkzeug "pbkdf2:<alg>:<iter>$<salt>$<hex>" hashes are accepted.
func CheckPassword(stored, plain string) error {
	if IsLegacyHash(stored) {
		return checkLegacy(stored, plain)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	}
	return nil
}

// IsLegacyHash reports whether the hash should be replaced with bcrypt after
// the next successful login.
func IsLegacyHash(stored string) bool {
	return strings.HasPrefix(stored, legacyPrefix)
}

func checkLegacy(stored, plain string) error {
	method, rest, ok := strings.Cut(stored, "$")
	if !ok {
		return errors.New("malformed pbkdf2 hash")
	}
	salt, want, ok := strings.Cut(rest, "$")
	if !ok {
		return errors.New("malformed pbkdf2 hash")
	}

	parts := strings.Split(method, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return errors.New("malformed pbkdf2 method")
	}

	newHash, err := legacyDigest(parts[1])
	if err != nil {
		return err
	}

	iterations := legacyDefaultIterations
	if len(parts) == 3 {
		iterations, err = strconv.Atoi(parts[2])
		if err != nil || iterations <= 0 {
			return errors.New("malformed pbkdf2 iterations")
		}
	}

	wantBytes, err := hex.DecodeString(want)
	if err != nil {
		return errors.New("malformed pbkdf2 digest")
	}

	got := pbkdf2.Key([]byte(plain), []byte(salt), iterations, len(wantBytes), newHash)
	if !hmac.Equal(got, wantBytes) {
		return ErrPasswordMismatch
	}
	return nil
}

func legacyDigest(name string) (func() hash.Hash, error) {
	switch name {
	case "sha256":
		return sha256.New, nil
	case "sha512":
		return sha512.New, nil
	case "sha1":
		return sha1.New, nil
	default:
		return nil, errors.New("unsupported pbkdf2 digest " + name)
	}
}
