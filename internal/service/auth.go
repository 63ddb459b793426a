package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/savebox/internal/auth"
)

// SessionService issues sessions for users coming through the GitHub bridge.
//
// There is no user table: the session token itself carries the profile
// fields the owner key is derived from, so a returning GitHub user gets
// the same owner key (their login) and sees the same library.
type SessionService struct {
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewSessionService(tokens *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{tokens: tokens, logger: logger}
}

// Session is a freshly issued token and the identity it encodes.
type Session struct {
	Identity auth.Identity
	Token    string
}

// LoginWithGitHub turns an exchanged GitHub profile into a session.
func (s *SessionService) LoginWithGitHub(_ context.Context, ghUser *auth.GitHubUser) (*Session, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/session: GitHub user must not be nil")
	}

	id := ghUser.Identity()
	token, err := s.tokens.Generate(id)
	if err != nil {
		return nil, fmt.Errorf("service/session: issuing token for %s: %w", id.Subject, err)
	}

	s.logger.Info("session issued via GitHub",
		slog.String("subject", id.Subject),
		slog.String("owner", id.Key()),
	)
	return &Session{Identity: id, Token: token}, nil
}
