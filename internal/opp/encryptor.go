package opp

import "io"

// Encryptor protects exported files at rest. Encryption uses a public
// key and needs no passphrase; decryption requires unlocking the private
// key first.
type Encryptor interface {
	// IsConfigured reports whether a key pair is available.
	IsConfigured() bool

	// Setup generates and stores a new key pair, protecting the private
	// key with the given passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns a
	// context usable for decryption.
	Unlock(passphrase string) (DecryptionContext, error)
}

// DecryptionContext holds an unlocked identity for decrypting files.
type DecryptionContext interface {
	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
