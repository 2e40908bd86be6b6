package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore stores sessions in an AES-GCM encrypted file
type EncryptedFileStore struct {
	filePath string
	salt     []byte
}

// fileData is the on-disk layout of the encrypted store
type fileData struct {
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Version   int       `json:"version"`
	Modified  time.Time `json:"modified"`
}

// NewEncryptedFileStore creates an encrypted file store at the given path
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	store := &EncryptedFileStore{filePath: filePath}

	if data, err := store.readFile(); err == nil {
		salt, err := base64.StdEncoding.DecodeString(data.Salt)
		if err != nil {
			return nil, fmt.Errorf("corrupted session file: bad salt: %w", err)
		}
		store.salt = salt
	} else {
		store.salt = make([]byte, saltSize)
		if _, err := rand.Read(store.salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	return store, nil
}

// Store saves a session to the encrypted file
func (e *EncryptedFileStore) Store(session *Session) error {
	sessions, err := e.loadAll()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if sessions == nil {
		sessions = make(map[string]*Session)
	}

	sessions[session.Name] = session
	return e.saveAll(sessions)
}

// Retrieve gets a session from the encrypted file
func (e *EncryptedFileStore) Retrieve(name string) (*Session, error) {
	sessions, err := e.loadAll()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	session, ok := sessions[name]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all sessions from the encrypted file
func (e *EncryptedFileStore) List() ([]*Session, error) {
	sessions, err := e.loadAll()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []*Session
	for _, session := range sessions {
		result = append(result, session)
	}
	return result, nil
}

// Delete removes a session from the encrypted file
func (e *EncryptedFileStore) Delete(name string) error {
	sessions, err := e.loadAll()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return err
	}

	if _, ok := sessions[name]; !ok {
		return ErrSessionNotFound
	}

	delete(sessions, name)
	return e.saveAll(sessions)
}

// Exists checks if a session exists in the encrypted file
func (e *EncryptedFileStore) Exists(name string) bool {
	sessions, err := e.loadAll()
	if err != nil {
		return false
	}
	_, ok := sessions[name]
	return ok
}

func (e *EncryptedFileStore) loadAll() (map[string]*Session, error) {
	data, err := e.readFile()
	if err != nil {
		return nil, err
	}

	encrypted, err := base64.StdEncoding.DecodeString(data.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("corrupted session file: %w", err)
	}

	plaintext, err := e.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt sessions: %w", err)
	}

	var sessions map[string]*Session
	if err := json.Unmarshal(plaintext, &sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}

	return sessions, nil
}

func (e *EncryptedFileStore) saveAll(sessions map[string]*Session) error {
	plaintext, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	encrypted, err := e.encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt sessions: %w", err)
	}

	data := fileData{
		Salt:      base64.StdEncoding.EncodeToString(e.salt),
		Encrypted: base64.StdEncoding.EncodeToString(encrypted),
		Version:   1,
		Modified:  time.Now(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file data: %w", err)
	}

	// Write atomically via temp file and rename
	tempPath := e.filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, e.filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session file: %w", err)
	}

	return nil
}

func (e *EncryptedFileStore) readFile() (*fileData, error) {
	raw, err := os.ReadFile(e.filePath)
	if err != nil {
		return nil, err
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("corrupted session file: %w", err)
	}
	return &data, nil
}

func (e *EncryptedFileStore) encrypt(plaintext []byte) ([]byte, error) {
	key := e.deriveKey()

	block, err := aes.NewCipher(key)
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

func (e *EncryptedFileStore) decrypt(ciphertext []byte) ([]byte, error) {
	key := e.deriveKey()

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (e *EncryptedFileStore) deriveKey() []byte {
	return pbkdf2.Key([]byte(e.getPassphrase()), e.salt, iterations, keySize, sha256.New)
}

// getPassphrase resolves the encryption passphrase: explicit env var first,
// then a passphrase file next to the store, then a generated one.
func (e *EncryptedFileStore) getPassphrase() string {
	if pass := os.Getenv("XLIKES_PASSPHRASE"); pass != "" {
		return pass
	}

	passFile := filepath.Join(filepath.Dir(e.filePath), ".passphrase")
	if data, err := os.ReadFile(passFile); err == nil && len(data) > 0 {
		return string(data)
	}

	return e.generatePassphrase(passFile)
}

func (e *EncryptedFileStore) generatePassphrase(passFile string) string {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		// Deterministic fallback, still keyed by the store path
		return "xlikes-" + e.filePath
	}

	pass := base64.StdEncoding.EncodeToString(raw)
	_ = os.WriteFile(passFile, []byte(pass), 0600)
	return pass
}
