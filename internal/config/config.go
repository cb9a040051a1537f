package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrConfigRead marks a config file that exists but cannot be read or
// parsed. The caller recovers with defaults; the corrupt file is left in
// place and is not overwritten until the next explicit save.
var ErrConfigRead = errors.New("config unreadable")

// DefaultBackupFrequency is the number of persisted changes between
// automatic backups.
const DefaultBackupFrequency = 5

// Config is the persisted user configuration. The top-level keys are the
// user-facing preferences; the sections configure the storage backends.
type Config struct {
	Language        string   `toml:"language"`
	Theme           string   `toml:"theme"`
	BackupFrequency int      `toml:"backup_frequency"`
	CustomAreas     []string `toml:"custom_areas"`
	CustomTopics    []string `toml:"custom_topics"`

	Storage    StorageConfig    `toml:"storage"`
	Backups    BackupsConfig    `toml:"backups"`
	Journal    JournalConfig    `toml:"journal"`
	Encryption EncryptionConfig `toml:"encryption"`
	LogDir     string           `toml:"log_dir"`
}

// StorageConfig configures the durable record store.
// Tagged union: Type selects the backend, the other fields depend on it.
type StorageConfig struct {
	Type    string `toml:"type"`               // "filesystem" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=filesystem
}

// BackupsConfig configures the snapshot store.
type BackupsConfig struct {
	Type string `toml:"type"`          // "filesystem" or "memory"
	Dir  string `toml:"dir,omitempty"` // only used for type=filesystem
}

// JournalConfig configures the operation journal.
type JournalConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig holds paths to the age key pair used for encrypted
// exports and uploads.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
}

// Default returns the documented default configuration rooted at baseDir:
// language "fr", light theme, a backup every 5 changes, empty custom
// lists, filesystem storage under baseDir.
func Default(baseDir string) *Config {
	return &Config{
		Language:        "fr",
		Theme:           "light",
		BackupFrequency: DefaultBackupFrequency,
		CustomAreas:     []string{},
		CustomTopics:    []string{},
		Storage: StorageConfig{
			Type:    "filesystem",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Backups: BackupsConfig{
			Type: "filesystem",
			Dir:  filepath.Join(baseDir, "data", "backups"),
		},
		Journal: JournalConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "oppmap.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "oppmap.key"),
		},
		LogDir: filepath.Join(baseDir, "log"),
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load reads the config at path. A missing file is created with the given
// defaults, which are then returned. A file that exists but cannot be
// parsed yields the defaults plus ErrConfigRead — the corrupt file is not
// overwritten, so it is never silently confirmed as valid.
func Load(path string, defaults *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := writeToFile(path, defaults); werr != nil {
				return nil, fmt.Errorf("creating default config: %w", werr)
			}
			return defaults, nil
		}
		return defaults, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return defaults, fmt.Errorf("%w: %v", ErrConfigRead, err)
	}

	if cfg.BackupFrequency < 1 {
		cfg.BackupFrequency = DefaultBackupFrequency
	}
	return cfg, nil
}

// Save overwrites the config file wholesale. Merging partial updates into
// the current config is the caller's responsibility.
func Save(path string, cfg *Config) error {
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("saving config to %s: %w", path, err)
	}
	return nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
