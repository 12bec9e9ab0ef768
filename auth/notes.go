package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sealnote/sealnote/pkg/keysig"
	"github.com/sealnote/sealnote/pkg/logger"
	"github.com/sealnote/sealnote/pkg/throttle"
)

// PostNote signs the already-sanitized message with the author's private
// key and persists it. The password is re-verified here because signing
// requires unwrapping the private key; a session alone is not enough.
// Like every credential check, the whole operation is padded to the
// response floor so the password re-verification is not a fast oracle.
func (s *Service) PostNote(ctx context.Context, username, password, message string) (*Note, error) {
	return throttle.RunWithFloor(ctx, s.cfg.ResponseFloor, func(ctx context.Context) (*Note, error) {
		return s.postNote(ctx, username, password, message)
	})
}

func (s *Service) postNote(ctx context.Context, username, password, message string) (*Note, error) {
	account, err := s.accounts.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		}
		return nil, ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		s.recordEvent(ctx, EventLoginError, "wrong password on note post", &account.ID)
		return nil, ErrAuthentication
	}

	privPEM, err := s.unwrapPrivateKey(account, password)
	if err != nil {
		s.recordEvent(ctx, EventError, fmt.Sprintf("private key unwrap failed: %v", err), &account.ID)
		return nil, ErrAuthentication
	}
	priv, err := keysig.ParsePrivateKey(privPEM)
	if err != nil {
		s.recordEvent(ctx, EventError, fmt.Sprintf("stored private key unparsable: %v", err), &account.ID)
		return nil, ErrAuthentication
	}

	sig, err := keysig.Sign([]byte(message), priv)
	if err != nil {
		return nil, fmt.Errorf("failed to sign note: %w", err)
	}

	note := &Note{
		ID:        uuid.New(),
		Message:   message,
		CreatedAt: time.Now(),
		Author:    account.Username,
		Signature: sig,
	}
	if ip, ok := SourceIPFromContext(ctx); ok {
		note.SourceIP = ip
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to store note: %w", err)
	}

	s.recordEvent(ctx, EventNotePosted, "", &account.ID)
	return note, nil
}

// VerifiedNotes returns every stored note whose signature verifies against
// its author's current public key. Notes that fail verification are
// dropped from the result and logged; they are never served as authentic.
func (s *Service) VerifiedNotes(ctx context.Context) ([]Note, error) {
	notes, err := s.notes.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return s.verify(ctx, notes)
}

// VerifiedNotesByAuthor is VerifiedNotes restricted to one author.
func (s *Service) VerifiedNotesByAuthor(ctx context.Context, author string) ([]Note, error) {
	notes, err := s.notes.ByAuthor(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return s.verify(ctx, notes)
}

func (s *Service) verify(ctx context.Context, notes []Note) ([]Note, error) {
	// Keys are resolved once per author; a nil entry marks an author whose
	// key could not be loaded so every note of theirs is dropped.
	keys := make(map[string]*rsa.PublicKey)

	verified := make([]Note, 0, len(notes))
	for _, n := range notes {
		pub, seen := keys[n.Author]
		if !seen {
			pub = s.authorKey(ctx, n.Author)
			keys[n.Author] = pub
		}
		if pub == nil {
			s.log.WarnContext(ctx, "dropping note with unresolvable author key",
				logger.Username(n.Author), logger.Component("auth"))
			continue
		}
		if !keysig.Verify([]byte(n.Message), n.Signature, pub) {
			s.log.WarnContext(ctx, "dropping note with invalid signature",
				logger.Username(n.Author), logger.Component("auth"))
			continue
		}
		verified = append(verified, n)
	}
	return verified, nil
}

func (s *Service) authorKey(ctx context.Context, author string) *rsa.PublicKey {
	account, err := s.accounts.ByUsername(ctx, author)
	if err != nil {
		return nil
	}
	pub, err := keysig.ParsePublicKey(account.PublicKeyPEM)
	if err != nil {
		return nil
	}
	return pub
}
