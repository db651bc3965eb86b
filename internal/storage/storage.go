package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	AccountDir   = ".local/igpub/db"
	AccountsFile = "accounts.enc"
	KeyFile      = ".key"
)

func NewAccountStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return newStorageAt(filepath.Join(homeDir, AccountDir))
}

func newStorageAt(basePath string) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &Storage{
		basePath: basePath,
	}

	if err := s.loadOrGenerateKey(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) loadOrGenerateKey() error {
	keyPath := filepath.Join(s.basePath, KeyFile)

	keyData, err := os.ReadFile(keyPath)
	if err == nil && len(keyData) == 32 {
		s.key = keyData
		return nil
	}

	s.key = make([]byte, 32)
	if _, err := rand.Read(s.key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	if err := os.WriteFile(keyPath, s.key, 0600); err != nil {
		return fmt.Errorf("failed to save encryption key: %w", err)
	}

	return nil
}

func (s *Storage) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Storage) decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// SaveAccount stores an account under a name. The first account saved
// becomes the default.
func (s *Storage) SaveAccount(name string, account *StoredAccount) error {
	if name == "" {
		return errors.New("account name is empty")
	}

	accounts, err := s.load()
	if err != nil {
		return err
	}

	stored := *account
	stored.AddedAt = time.Now()
	accounts.Accounts[name] = &stored
	if accounts.Default == "" {
		accounts.Default = name
	}

	return s.save(accounts)
}

// LoadAccount returns the named account, or the default when name is
// empty. A missing default yields nil without an error.
func (s *Storage) LoadAccount(name string) (*StoredAccount, error) {
	accounts, err := s.load()
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = accounts.Default
	}
	if name == "" {
		return nil, nil
	}

	account, ok := accounts.Accounts[name]
	if !ok {
		return nil, fmt.Errorf("no account named %q", name)
	}
	return account, nil
}

func (s *Storage) ListAccounts() ([]string, string, error) {
	accounts, err := s.load()
	if err != nil {
		return nil, "", err
	}

	names := make([]string, 0, len(accounts.Accounts))
	for name := range accounts.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, accounts.Default, nil
}

func (s *Storage) DeleteAccount(name string) error {
	accounts, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := accounts.Accounts[name]; !ok {
		return fmt.Errorf("no account named %q", name)
	}
	delete(accounts.Accounts, name)

	if accounts.Default == name {
		accounts.Default = ""
		names := make([]string, 0, len(accounts.Accounts))
		for remaining := range accounts.Accounts {
			names = append(names, remaining)
		}
		if len(names) > 0 {
			sort.Strings(names)
			accounts.Default = names[0]
		}
	}

	return s.save(accounts)
}

func (s *Storage) SetDefault(name string) error {
	accounts, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := accounts.Accounts[name]; !ok {
		return fmt.Errorf("no account named %q", name)
	}
	accounts.Default = name

	return s.save(accounts)
}

func (s *Storage) HasAccounts() bool {
	accounts, err := s.load()
	return err == nil && len(accounts.Accounts) > 0
}

func (s *Storage) GetBasePath() string {
	return s.basePath
}

func (s *Storage) load() (*accountsFile, error) {
	path := filepath.Join(s.basePath, AccountsFile)

	encrypted, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &accountsFile{Accounts: make(map[string]*StoredAccount)}, nil
		}
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	decrypted, err := s.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt accounts: %w", err)
	}

	var accounts accountsFile
	if err := json.Unmarshal(decrypted, &accounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}
	if accounts.Accounts == nil {
		accounts.Accounts = make(map[string]*StoredAccount)
	}

	return &accounts, nil
}

func (s *Storage) save(accounts *accountsFile) error {
	jsonData, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	encrypted, err := s.encrypt(jsonData)
	if err != nil {
		return fmt.Errorf("failed to encrypt accounts: %w", err)
	}

	path := filepath.Join(s.basePath, AccountsFile)
	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}

	return nil
}
