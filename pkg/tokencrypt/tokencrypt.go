// Package tokencrypt cifra credenciais OAuth antes de elas saírem do processo em direção ao banco.
//
// Formato do texto cifrado: "v1.<kid>.<base64url(nonce|sealed)>". O kid identifica a chave derivada,
// permitindo que chaves anteriores continuem decifrando durante uma rotação.
package tokencrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"github.com/vfg2006/adsync-api/internal/domain"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	version      = "v1"
	minKeyLength = 16
	kidLength    = 8
	hkdfInfo     = "adsync token encryption v1"
)

type Encrypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type key struct {
	id   string
	aead cipherAEAD
}

// cipherAEAD é o subconjunto de cipher.AEAD que usamos
type cipherAEAD interface {
	NonceSize() int
	Overhead() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// Cipher é seguro para uso concorrente; nada nele é mutado depois da construção.
type Cipher struct {
	current key
	keys    map[string]key
}

var _ Encrypter = (*Cipher)(nil)

// New deriva a chave atual e as anteriores. Chave ausente ou curta falha aqui,
// nunca no momento da chamada.
func New(secret string, previous ...string) (*Cipher, error) {
	current, err := deriveKey("encryption_key", secret)
	if err != nil {
		return nil, err
	}

	c := &Cipher{
		current: current,
		keys:    map[string]key{current.id: current},
	}

	for _, p := range previous {
		if strings.TrimSpace(p) == "" {
			continue
		}
		k, err := deriveKey("encryption_previous_keys", p)
		if err != nil {
			return nil, err
		}
		c.keys[k.id] = k
	}

	return c, nil
}

func deriveKey(field, secret string) (key, error) {
	if strings.TrimSpace(secret) == "" {
		return key{}, &domain.ConfigurationError{Field: field, Reason: "is not set"}
	}
	if len(secret) < minKeyLength {
		return key{}, &domain.ConfigurationError{Field: field, Reason: "is too short"}
	}

	material := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), material); err != nil {
		return key{}, &domain.ConfigurationError{Field: field, Reason: "key derivation failed"}
	}

	aead, err := chacha20poly1305.NewX(material)
	if err != nil {
		return key{}, &domain.ConfigurationError{Field: field, Reason: "invalid key material"}
	}

	sum := sha256.Sum256(material)

	return key{id: hex.EncodeToString(sum[:])[:kidLength], aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.current.aead.NonceSize(), c.current.aead.NonceSize()+len(plaintext)+c.current.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.current.aead.Seal(nonce, nonce, []byte(plaintext), []byte(c.current.id))

	return version + "." + c.current.id + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	parts := strings.Split(ciphertext, ".")
	if len(parts) != 3 || parts[0] != version {
		return "", &domain.DecryptionError{Reason: "unrecognized ciphertext format"}
	}

	k, ok := c.keys[parts[1]]
	if !ok {
		return "", &domain.DecryptionError{Reason: "unknown key id"}
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", &domain.DecryptionError{Reason: "invalid encoding"}
	}

	if len(raw) < k.aead.NonceSize()+k.aead.Overhead() {
		return "", &domain.DecryptionError{Reason: "ciphertext too short"}
	}

	nonce, sealed := raw[:k.aead.NonceSize()], raw[k.aead.NonceSize():]
	plaintext, err := k.aead.Open(nil, nonce, sealed, []byte(k.id))
	if err != nil {
		return "", &domain.DecryptionError{Reason: "authentication failed"}
	}

	return string(plaintext), nil
}

// EncryptOptional devolve nil para valores vazios, usado em refresh tokens
func EncryptOptional(e Encrypter, plaintext string) (*string, error) {
	if plaintext == "" {
		return nil, nil
	}
	ct, err := e.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}
