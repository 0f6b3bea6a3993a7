package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/ports"
)

// sealedPrefix marks an encrypted field value.
const sealedPrefix = "enc:v1:"

// ErrKeySize is returned for keys that are not 32 bytes.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// DefaultSealedFields are the node fields that may carry prompts, commands or addresses.
var DefaultSealedFields = []string{
	domain.FieldInitialPrompt,
	domain.FieldSystemInstruction,
	domain.FieldPromptTemplate,
	domain.FieldServerCommand,
	domain.FieldReceiverEmail,
}

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	ActiveKey []byte

	// FallbackKeys are tried when the active key cannot open a value,
	// which allows rotating keys without rewriting stored sessions.
	FallbackKeys [][]byte

	// Fields lists the node fields to encrypt. Empty means DefaultSealedFields.
	Fields []string
}

type encryptionMiddleware struct {
	next   ports.GraphStore
	config EncryptionConfig
	fields map[string]bool
}

// NewEncryptionMiddleware encrypts the configured node fields with AES-GCM before
// they reach the store. Node ids, kinds, labels, positions and edges stay readable.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key: %w", ErrKeySize)
		}
	}
	if len(config.Fields) == 0 {
		config.Fields = DefaultSealedFields
	}
	fields := make(map[string]bool, len(config.Fields))
	for _, f := range config.Fields {
		fields[f] = true
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &encryptionMiddleware{next: next, config: config, fields: fields}
	}, nil
}

// ParseKey decodes a base64 (standard or URL) encoded 32 byte key.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if key, err = base64.URLEncoding.DecodeString(s); err != nil {
			return nil, fmt.Errorf("failed to decode key: %w", err)
		}
	}
	if len(key) != 32 {
		return nil, ErrKeySize
	}
	return key, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, session *domain.Session) error {
	// Work on a copy; the caller keeps its plaintext session.
	sealed := session.Clone()
	for i := range sealed.Graph.Nodes {
		for k, v := range sealed.Graph.Nodes[i].Data {
			if !m.fields[k] || v == "" {
				continue
			}
			ct, err := encrypt([]byte(v), m.config.ActiveKey)
			if err != nil {
				return fmt.Errorf("failed to encrypt %s of node %s: %w", k, sealed.Graph.Nodes[i].ID, err)
			}
			sealed.Graph.Nodes[i].Data[k] = sealedPrefix + base64.StdEncoding.EncodeToString(ct)
		}
	}
	return m.next.Save(ctx, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range session.Graph.Nodes {
		for k, v := range session.Graph.Nodes[i].Data {
			if !m.fields[k] {
				continue
			}
			// Plaintext values predate encryption and are returned as-is,
			// including ones that merely look sealed.
			enc, ok := strings.CutPrefix(v, sealedPrefix)
			if !ok {
				continue
			}
			ct, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				continue
			}
			plain, err := decryptWithRotation(ct, m.config.ActiveKey, m.config.FallbackKeys)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt %s of node %s: %w", k, session.Graph.Nodes[i].ID, err)
			}
			session.Graph.Nodes[i].Data[k] = string(plain)
		}
	}
	return session, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
