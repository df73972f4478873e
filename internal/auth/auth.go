// Package auth manages driver codes and driver sessions. Codes are short
// numeric secrets stored only as bcrypt hashes; a valid code opens a
// time-boxed session identified by an opaque token.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Joncarre/aplicacion-de-seguimiento/fleetdb"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/clock"
	"github.com/Joncarre/aplicacion-de-seguimiento/internal/logging"
)

const (
	// SessionDuration is how long a driver session stays valid after login.
	SessionDuration = 8 * time.Hour

	// CodeLength is the number of digits in a generated driver code.
	CodeLength = 10
)

var (
	ErrInvalidCode    = errors.New("invalid driver code")
	ErrCodeInUse      = errors.New("driver code already has an active session")
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Service implements login, session validation and code provisioning.
type Service struct {
	db     *fleetdb.Client
	logger *slog.Logger
	clock  clock.Clock
}

func NewService(db *fleetdb.Client, logger *slog.Logger, clk clock.Clock) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		logger: logger.With(slog.String("component", "auth")),
		clock:  clk,
	}
}

// Login checks the plaintext code against every active code hash and, on a
// match, opens a session. lineID may be empty when the driver has not
// picked a line yet.
func (s *Service) Login(ctx context.Context, code, lineID string) (fleetdb.Session, error) {
	codes, err := s.db.Queries.ListActiveDriverCodes(ctx)
	if err != nil {
		return fleetdb.Session{}, fmt.Errorf("unable to load driver codes: %w", err)
	}

	var matched *fleetdb.DriverCode
	for i := range codes {
		if bcrypt.CompareHashAndPassword([]byte(codes[i].CodeHash), []byte(code)) == nil {
			matched = &codes[i]
			break
		}
	}
	if matched == nil {
		return fleetdb.Session{}, ErrInvalidCode
	}

	now := s.clock.Now()
	inUse, err := s.db.Queries.HasActiveSessionForCode(ctx, matched.ID, now)
	if err != nil {
		return fleetdb.Session{}, fmt.Errorf("unable to check active sessions: %w", err)
	}
	if inUse {
		return fleetdb.Session{}, ErrCodeInUse
	}

	var line sql.NullString
	if lineID != "" {
		line = sql.NullString{String: lineID, Valid: true}
	}
	params := fleetdb.CreateSessionParams{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		CodeID:    matched.ID,
		LineID:    line,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionDuration),
	}
	if err := s.db.Queries.CreateSession(ctx, params); err != nil {
		return fleetdb.Session{}, fmt.Errorf("unable to create session: %w", err)
	}

	logging.LogOperation(s.logger, "driver_session_opened",
		slog.String("session_id", params.ID),
		slog.String("line_id", lineID))

	return s.db.Queries.GetSession(ctx, params.ID)
}

// ValidateSession resolves a token to its session, rejecting ended and
// expired ones.
func (s *Service) ValidateSession(ctx context.Context, token string) (fleetdb.Session, error) {
	session, err := s.db.Queries.GetSessionByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return fleetdb.Session{}, ErrInvalidSession
	}
	if err != nil {
		return fleetdb.Session{}, fmt.Errorf("unable to load session: %w", err)
	}
	if !session.IsActive || !session.ExpiresAt.After(s.clock.Now()) {
		return fleetdb.Session{}, ErrInvalidSession
	}
	return session, nil
}

// SelectLine binds (or re-binds) the session to a line.
func (s *Service) SelectLine(ctx context.Context, token, lineID string) (fleetdb.Session, error) {
	session, err := s.ValidateSession(ctx, token)
	if err != nil {
		return fleetdb.Session{}, err
	}
	if err := s.db.Queries.UpdateSessionLine(ctx, session.ID, lineID); err != nil {
		return fleetdb.Session{}, fmt.Errorf("unable to update session line: %w", err)
	}
	return s.db.Queries.GetSession(ctx, session.ID)
}

// Logout ends the session behind the token. Ending an already ended or
// expired session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	session, err := s.db.Queries.GetSessionByToken(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidSession
	}
	if err != nil {
		return fmt.Errorf("unable to load session: %w", err)
	}
	if err := s.db.Queries.EndSession(ctx, session.ID, s.clock.Now()); err != nil {
		return fmt.Errorf("unable to end session: %w", err)
	}
	logging.LogOperation(s.logger, "driver_session_closed", slog.String("session_id", session.ID))
	return nil
}

// GenerateCode provisions a new driver code and returns its plaintext
// exactly once; only the bcrypt hash is persisted.
func (s *Service) GenerateCode(ctx context.Context) (string, error) {
	code, err := randomDigits(CodeLength)
	if err != nil {
		return "", fmt.Errorf("unable to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("unable to hash code: %w", err)
	}

	params := fleetdb.CreateDriverCodeParams{
		ID:        uuid.NewString(),
		CodeHash:  string(hash),
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.Queries.CreateDriverCode(ctx, params); err != nil {
		return "", fmt.Errorf("unable to store code: %w", err)
	}

	logging.LogOperation(s.logger, "driver_code_created", slog.String("code_id", params.ID))
	return code, nil
}

// RevokeCode deactivates a driver code so it can no longer open sessions.
// Existing sessions keep running until they end or expire.
func (s *Service) RevokeCode(ctx context.Context, codeID string) error {
	return s.db.Queries.DeactivateDriverCode(ctx, codeID)
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
