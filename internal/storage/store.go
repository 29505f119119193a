package storage

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"
)

// DefaultMaxRecordBytes caps a serialized record at 500 KiB before the trim
// policy kicks in.
const DefaultMaxRecordBytes = 500 * 1024

// Trimmable lets a state object shed its least essential data when the
// serialized record exceeds the size cap.
type Trimmable interface {
	DropUndoHistory()
}

// Store persists JSON state encrypted at rest. All failures degrade to
// "record absent" plus a log line; nothing here ever reaches a caller as an
// error. Losing the persisted record is an accepted outcome, a crash is not.
type Store struct {
	backend  Backend
	cipher   *Cipher
	maxBytes int
}

// New builds a Store over backend. A nil cipher disables persistence
// entirely: loads report absence and saves are dropped.
func New(backend Backend, cipher *Cipher, maxBytes int) *Store {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRecordBytes
	}
	return &Store{backend: backend, cipher: cipher, maxBytes: maxBytes}
}

// Load reads and decrypts the named record into v, reporting whether a
// usable record existed. A record that fails decryption or parsing is
// treated as corrupt: it is deleted and reported absent.
func (s *Store) Load(ctx context.Context, name string, v any) bool {
	if s.cipher == nil {
		return false
	}

	raw, found, err := s.backend.Get(ctx, name)
	if err != nil {
		log.Errorf("Failed to read record %s: %v", name, err)
		return false
	}
	if !found {
		return false
	}

	plaintext, err := s.cipher.Decrypt(raw)
	if err != nil {
		log.Warnf("Record %s is corrupted, deleting it: %v", name, err)
		s.deleteQuietly(ctx, name)
		return false
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		log.Warnf("Record %s holds unparsable state, deleting it: %v", name, err)
		s.deleteQuietly(ctx, name)
		return false
	}

	return true
}

// Save serializes v, encrypts it and writes it through. An oversized record
// is asked to drop its undo history and serialized once more. If encryption
// or the write itself fails, the stored record is deleted rather than left
// half-written.
func (s *Store) Save(ctx context.Context, name string, v any) {
	if s.cipher == nil {
		log.Debugf("Persistence disabled, dropping save of record %s", name)
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("Failed to serialize record %s: %v", name, err)
		return
	}

	if len(data) > s.maxBytes {
		if t, ok := v.(Trimmable); ok {
			log.Warnf("Record %s is %d bytes, dropping undo history to fit under %d",
				name, len(data), s.maxBytes)
			t.DropUndoHistory()

			data, err = json.Marshal(v)
			if err != nil {
				log.Errorf("Failed to serialize trimmed record %s: %v", name, err)
				return
			}
		}
	}

	if len(data) > s.maxBytes {
		log.Errorf("Record %s still exceeds %d bytes after trimming, deleting stored copy", name, s.maxBytes)
		s.deleteQuietly(ctx, name)
		return
	}

	ciphertext, err := s.cipher.Encrypt(data)
	if err != nil {
		log.Errorf("Failed to encrypt record %s, deleting stored copy: %v", name, err)
		s.deleteQuietly(ctx, name)
		return
	}

	if err := s.backend.Set(ctx, name, ciphertext); err != nil {
		log.Errorf("Failed to write record %s, deleting stored copy: %v", name, err)
		s.deleteQuietly(ctx, name)
	}
}

// Remove deletes the named record unconditionally.
func (s *Store) Remove(ctx context.Context, name string) {
	s.deleteQuietly(ctx, name)
}

func (s *Store) deleteQuietly(ctx context.Context, name string) {
	if err := s.backend.Delete(ctx, name); err != nil {
		log.Errorf("Failed to delete record %s: %v", name, err)
	}
}
