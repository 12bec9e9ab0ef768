package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sealnote/sealnote/auth"
)

// AccountStore is the pgx implementation of auth.AccountStore.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates an account store backed by the given pool.
func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

const accountColumns = `id, username, email, created_at, password_hash, public_key_pem,
	private_key_ciphertext, private_key_iv, private_key_tag, private_key_salt,
	totp_ciphertext, totp_iv, totp_tag, totp_salt,
	COALESCE(reset_token, ''), reset_token_salt`

func (s *AccountStore) Create(ctx context.Context, account *auth.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, username, email, created_at, password_hash, public_key_pem,
			private_key_ciphertext, private_key_iv, private_key_tag, private_key_salt,
			totp_ciphertext, totp_iv, totp_tag, totp_salt
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		account.ID, account.Username, account.Email, account.CreatedAt,
		account.PasswordHash, account.PublicKeyPEM,
		account.PrivateKey.Ciphertext, account.PrivateKey.IV, account.PrivateKey.Tag, account.PrivateKey.Salt,
		account.TOTPSecret.Ciphertext, account.TOTPSecret.IV, account.TOTPSecret.Tag, account.TOTPSecret.Salt,
	)
	if isUniqueViolation(err) {
		return auth.ErrDuplicateAccount
	}
	return err
}

func (s *AccountStore) ByUsername(ctx context.Context, username string) (*auth.Account, error) {
	return s.one(ctx, "lower(username) = lower($1)", username)
}

func (s *AccountStore) ByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.one(ctx, "lower(email) = lower($1)", email)
}

func (s *AccountStore) one(ctx context.Context, where string, arg any) (*auth.Account, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM accounts WHERE %s", accountColumns, where), arg)

	var a auth.Account
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.CreatedAt, &a.PasswordHash, &a.PublicKeyPEM,
		&a.PrivateKey.Ciphertext, &a.PrivateKey.IV, &a.PrivateKey.Tag, &a.PrivateKey.Salt,
		&a.TOTPSecret.Ciphertext, &a.TOTPSecret.IV, &a.TOTPSecret.Tag, &a.TOTPSecret.Salt,
		&a.ResetToken, &a.ResetTokenSalt,
	)
	if isNoRows(err) {
		return nil, auth.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountStore) SetResetToken(ctx context.Context, accountID uuid.UUID, token string, salt []byte) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE accounts SET reset_token = $2, reset_token_salt = $3 WHERE id = $1",
		accountID, token, salt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

// CommitRecovery applies the whole recovery outcome in one transaction so
// a crash cannot leave the password, key material and note signatures
// disagreeing with each other.
func (s *AccountStore) CommitRecovery(ctx context.Context, commit auth.RecoveryCommit) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE accounts SET
				password_hash = $2,
				private_key_ciphertext = $3, private_key_iv = $4,
				private_key_tag = $5, private_key_salt = $6,
				reset_token = NULL, reset_token_salt = NULL`
		args := []any{
			commit.AccountID, commit.PasswordHash,
			commit.PrivateKey.Ciphertext, commit.PrivateKey.IV,
			commit.PrivateKey.Tag, commit.PrivateKey.Salt,
		}
		if commit.PublicKeyPEM != nil {
			query += ", public_key_pem = $7"
			args = append(args, commit.PublicKeyPEM)
		}
		query += " WHERE id = $1"

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return auth.ErrAccountNotFound
		}

		for _, rs := range commit.ResignedNotes {
			if _, err := tx.Exec(ctx,
				"UPDATE notes SET signature = $2 WHERE id = $1",
				rs.NoteID, rs.Signature); err != nil {
				return err
			}
		}
		return nil
	})
}
