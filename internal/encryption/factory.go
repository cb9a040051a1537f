package encryption

import (
	"fmt"

	"oppmap-go/internal/config"
	"oppmap-go/internal/opp"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Type "none" (the default) returns a nil Encryptor: encryption is
// opt-in and callers must check before offering encrypted exports.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (opp.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
