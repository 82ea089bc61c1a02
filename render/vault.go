package render

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"

	"github.com/RAZZKCODE/pdf-edit-print/observability"
	"github.com/RAZZKCODE/pdf-edit-print/passphrase"
)

// Vault container layout: magic, scrypt cost bytes (logN, r, p), a
// 16-byte salt, the GCM nonce, then the sealed inner document.
var magicVault = []byte("PVLT1")

const (
	vaultLogN    = 15
	vaultR       = 8
	vaultP       = 1
	vaultSaltLen = 16
	vaultKeyLen  = 32
	vaultNonce   = 12
)

// Seal wraps a document in a passphrase-protected vault container.
// The result opens through VaultEngine with the same passphrase.
func Seal(data []byte, pass string) ([]byte, error) {
	salt := make([]byte, vaultSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("seal vault: %w", err)
	}

	key, err := scrypt.Key([]byte(pass), salt, 1<<vaultLogN, vaultR, vaultP, vaultKeyLen)
	if err != nil {
		return nil, fmt.Errorf("seal vault: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("seal vault: %w", err)
	}

	nonce := make([]byte, vaultNonce)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal vault: %w", err)
	}

	out := make([]byte, 0, len(magicVault)+3+vaultSaltLen+vaultNonce+len(data)+gcm.Overhead())
	out = append(out, magicVault...)
	out = append(out, vaultLogN, vaultR, vaultP)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, vaultNonce)
}

// VaultEngine opens sealed containers. It drives the passphrase
// callback in a retry loop: a rejected attempt asks again with
// PriorAttemptRejected, a dismissed request abandons the open. The
// decrypted payload is re-dispatched through the inner engines.
type VaultEngine struct {
	inner []Engine
	log   observability.Logger
}

func NewVaultEngine(log observability.Logger, inner ...Engine) *VaultEngine {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &VaultEngine{inner: inner, log: log}
}

func (e *VaultEngine) Detect(data []byte) bool {
	return bytes.HasPrefix(data, magicVault)
}

func (e *VaultEngine) Open(ctx context.Context, data []byte, ask AskFunc) (Document, error) {
	rest := data[len(magicVault):]
	if len(rest) < 3+vaultSaltLen+vaultNonce {
		return nil, fmt.Errorf("open vault: truncated header")
	}

	logN, r, p := int(rest[0]), int(rest[1]), int(rest[2])
	if logN < 10 || logN > 22 || r < 1 || p < 1 {
		return nil, fmt.Errorf("open vault: bad cost parameters N=2^%d r=%d p=%d", logN, r, p)
	}
	salt := rest[3 : 3+vaultSaltLen]
	nonce := rest[3+vaultSaltLen : 3+vaultSaltLen+vaultNonce]
	sealed := rest[3+vaultSaltLen+vaultNonce:]

	if ask == nil {
		return nil, ErrPassphraseCancelled
	}

	reason := passphrase.FirstRequest
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pass, ok := ask(reason)
		if !ok {
			e.log.Debug("vault open abandoned")
			return nil, ErrPassphraseCancelled
		}

		key, err := scrypt.Key([]byte(pass), salt, 1<<logN, r, p, vaultKeyLen)
		if err != nil {
			return nil, fmt.Errorf("open vault: %w", err)
		}
		gcm, err := newGCM(key)
		if err != nil {
			return nil, fmt.Errorf("open vault: %w", err)
		}

		plain, err := gcm.Open(nil, nonce, sealed, nil)
		if err != nil {
			// Wrong passphrase. Ask again.
			reason = passphrase.PriorAttemptRejected
			continue
		}

		e.log.Debug("vault unsealed", observability.Int("bytes", len(plain)))
		return Open(ctx, plain, ask, e.inner...)
	}
}
