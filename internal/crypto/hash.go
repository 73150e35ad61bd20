package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns recommended Argon2id parameters for password hashing.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher produces Argon2id password hashes with fixed parameters.
type Hasher struct {
	params HashParams
}

// NewHasher creates a Hasher. Tests use cheaper parameters than production.
func NewHasher(params HashParams) *Hasher {
	return &Hasher{params: params}
}

// Hash returns the PHC encoding of password under a fresh random salt:
// $argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-hash>
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	enc := encodedHash{
		params: h.params,
		salt:   salt,
		key:    h.params.derive(password, salt),
	}
	return enc.String(), nil
}

// Verify reports whether password matches an encoded hash. Parameters are
// taken from the hash itself, so hashes produced under older settings keep
// verifying.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	return VerifyPassword(password, encoded)
}

// HashPassword hashes a password using Argon2id with default parameters.
func HashPassword(password string) (string, error) {
	return NewHasher(DefaultHashParams()).Hash(password)
}

// VerifyPassword checks whether a password matches the given Argon2id encoded hash.
// The comparison is constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	enc, err := parseEncodedHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := enc.params.derive(password, enc.salt)
	return subtle.ConstantTimeCompare(enc.key, candidate) == 1, nil
}

func (p HashParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
}

type encodedHash struct {
	params HashParams
	salt   []byte
	key    []byte
}

func (e encodedHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		e.params.Memory,
		e.params.Iterations,
		e.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(e.salt),
		base64.RawStdEncoding.EncodeToString(e.key),
	)
}

func parseEncodedHash(s string) (encodedHash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return encodedHash{}, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return encodedHash{}, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return encodedHash{}, ErrIncompatibleVersion
	}

	var enc encodedHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &enc.params.Memory, &enc.params.Iterations, &enc.params.Parallelism); err != nil {
		return encodedHash{}, ErrInvalidHashFormat
	}

	var err error
	if enc.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return encodedHash{}, ErrInvalidHashFormat
	}
	if enc.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(enc.key) == 0 {
		return encodedHash{}, ErrInvalidHashFormat
	}
	enc.params.SaltLength = uint32(len(enc.salt))
	enc.params.KeyLength = uint32(len(enc.key))

	return enc, nil
}
