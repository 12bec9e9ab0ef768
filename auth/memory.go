package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is a mutex-guarded in-process backend for the three
// storage interfaces, exposed through the Accounts, Notes and AuditLog
// views. It backs tests and local development; production deployments use
// the postgres package. Sharing one lock keeps CommitRecovery atomic
// across accounts and notes, mirroring the transactional backend.
type MemoryStorage struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
	notes    []Note
	events   []Event
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{accounts: make(map[uuid.UUID]Account)}
}

// Accounts returns the AccountStore view.
func (m *MemoryStorage) Accounts() AccountStore { return memoryAccounts{m} }

// Notes returns the NoteStore view.
func (m *MemoryStorage) Notes() NoteStore { return memoryNotes{m} }

// AuditLog returns the EventLog view.
func (m *MemoryStorage) AuditLog() EventLog { return memoryEvents{m} }

// RecordedEvents returns a snapshot of the audit log in append order.
func (m *MemoryStorage) RecordedEvents() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

type memoryAccounts struct{ m *MemoryStorage }

func (s memoryAccounts) Create(_ context.Context, account *Account) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.accounts {
		if strings.EqualFold(existing.Username, account.Username) ||
			strings.EqualFold(existing.Email, account.Email) {
			return ErrDuplicateAccount
		}
	}
	s.m.accounts[account.ID] = *account
	return nil
}

func (s memoryAccounts) ByUsername(_ context.Context, username string) (*Account, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, account := range s.m.accounts {
		if strings.EqualFold(account.Username, username) {
			copied := account
			return &copied, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s memoryAccounts) ByEmail(_ context.Context, email string) (*Account, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, account := range s.m.accounts {
		if strings.EqualFold(account.Email, email) {
			copied := account
			return &copied, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s memoryAccounts) SetResetToken(_ context.Context, accountID uuid.UUID, token string, salt []byte) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	account, ok := s.m.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.ResetToken = token
	account.ResetTokenSalt = salt
	s.m.accounts[accountID] = account
	return nil
}

func (s memoryAccounts) CommitRecovery(_ context.Context, commit RecoveryCommit) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	account, ok := s.m.accounts[commit.AccountID]
	if !ok {
		return ErrAccountNotFound
	}

	account.PasswordHash = commit.PasswordHash
	account.PrivateKey = commit.PrivateKey
	if commit.PublicKeyPEM != nil {
		account.PublicKeyPEM = commit.PublicKeyPEM
	}
	account.ResetToken = ""
	account.ResetTokenSalt = nil
	s.m.accounts[commit.AccountID] = account

	for _, rs := range commit.ResignedNotes {
		for i := range s.m.notes {
			if s.m.notes[i].ID == rs.NoteID {
				s.m.notes[i].Signature = rs.Signature
			}
		}
	}
	return nil
}

type memoryNotes struct{ m *MemoryStorage }

func (s memoryNotes) Create(_ context.Context, note *Note) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.notes = append(s.m.notes, *note)
	return nil
}

func (s memoryNotes) All(_ context.Context) ([]Note, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]Note, len(s.m.notes))
	copy(out, s.m.notes)
	return out, nil
}

func (s memoryNotes) ByAuthor(_ context.Context, author string) ([]Note, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []Note
	for _, n := range s.m.notes {
		if strings.EqualFold(n.Author, author) {
			out = append(out, n)
		}
	}
	return out, nil
}

type memoryEvents struct{ m *MemoryStorage }

// Append stores the event as given. A caller-set CreatedAt is preserved so
// tests can place events inside or outside a lockout window.
func (s memoryEvents) Append(_ context.Context, event Event) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.m.events = append(s.m.events, event)
	return nil
}

func (s memoryEvents) CountSince(_ context.Context, eventType EventType, accountID uuid.UUID, since time.Time) (int, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	count := 0
	for _, e := range s.m.events {
		if e.Type == eventType && e.AccountID != nil && *e.AccountID == accountID && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
