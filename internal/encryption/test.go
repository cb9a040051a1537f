package encryption

import (
	"bytes"
	"fmt"
	"io"

	"oppmap-go/internal/opp"
)

// testHeader is prepended by TestEncryptor so encrypted output clearly
// differs from plaintext while staying deterministic and reversible.
var testHeader = []byte("OPPENC\x00\x00")

// TestEncryptor is a simple, deterministic encryptor for testing. It
// requires no keys and no crypto: Encrypt prepends a fixed header,
// Decrypt strips it.
type TestEncryptor struct{}

var _ opp.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor { return &TestEncryptor{} }

func (e *TestEncryptor) IsConfigured() bool { return true }

func (e *TestEncryptor) Setup(string) error { return nil }

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(string) (opp.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

// TestDecryptionContext strips the header added by TestEncryptor.
type TestDecryptionContext struct{}

var _ opp.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
