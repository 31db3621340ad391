package entity

import (
	"context"
	"fmt"

	"github.com/roach88/insignia/internal/graph"
)

// CreateSession mints a Session vertex stamped with its creation time.
func (s *Service) CreateSession(ctx context.Context) (graph.Session, error) {
	sess := s.mint(graph.KindSession)
	created := s.now()

	if err := s.put(ctx, sess, graph.EdgeSessionSelf, sess, graph.SessionState{Created: created}); err != nil {
		return graph.Session{}, fmt.Errorf("create session: %w", err)
	}
	return graph.Session{SessionID: sess.String(), Created: created}, nil
}

// GetSessions returns the aggregates reconciled from the session_* edges of
// sessionID: one per open login attempt, a single anonymous aggregate when
// none is open, or none when the session has no edges.
func (s *Service) GetSessions(ctx context.Context, sessionID string) ([]graph.Session, error) {
	if _, err := graph.ParseVertexOfKind(sessionID, graph.KindSession); err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	edges, err := s.graph.NeighborhoodWithPrefix(ctx, sessionID, graph.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("get sessions %q: %w", sessionID, err)
	}
	return s.sessions.Resolve(ctx, sessionID, edges)
}

// AuthenticateSession records a login of userID on sessionID.
//
// Each call mints a fresh SessionLogin vertex, so concurrent logins on one
// session stay distinguishable. Retrying after a timeout can therefore
// create a second login attempt.
func (s *Service) AuthenticateSession(ctx context.Context, sessionID, userID, authData string) (graph.Session, error) {
	sess, err := graph.ParseVertexOfKind(sessionID, graph.KindSession)
	if err != nil {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", err)
	}
	userVertex, err := graph.ParseVertexOfKind(userID, graph.KindUser)
	if err != nil {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", err)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", err)
	}
	if user == nil {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", invalidUser(userID))
	}

	prior, err := s.GetSessions(ctx, sessionID)
	if err != nil {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", err)
	}
	if len(prior) == 0 {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", invalidSession(sessionID))
	}

	login := s.mint(graph.KindSessionLogin)
	state := graph.SessionState{
		Created:  prior[0].Created,
		Login:    s.now(),
		AuthData: authData,
	}

	if err := s.put(ctx, sess, graph.EdgeSessionUser, userVertex, nil); err != nil {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", err)
	}
	if err := s.put(ctx, sess, graph.EdgeSessionLogin, login, state); err != nil {
		return graph.Session{}, fmt.Errorf("authenticate session: %w", err)
	}

	s.logger.Info("authenticated session", "session", sessionID, "login_vertex", login.String(), "user", userID)
	return graph.Session{
		SessionID:      sessionID,
		Created:        state.Created,
		LoginSessionID: login.String(),
		Login:          state.Login,
		AuthData:       state.AuthData,
		User:           user,
	}, nil
}

// LogoutSession closes every open login attempt on sessionID.
//
// Logout is best-effort per attempt: a failed write is logged and the
// remaining attempts are still closed. Only resolving the session can fail,
// and a session with no edges is reported as ErrInvalidSessionID.
func (s *Service) LogoutSession(ctx context.Context, sessionID string) error {
	sess, err := graph.ParseVertexOfKind(sessionID, graph.KindSession)
	if err != nil {
		return fmt.Errorf("logout session: %w", err)
	}

	sessions, err := s.GetSessions(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("logout session: %w", err)
	}
	if len(sessions) == 0 {
		return fmt.Errorf("logout session: %w", invalidSession(sessionID))
	}

	logout := s.now()
	for _, open := range sessions {
		if !open.Authenticated() {
			s.logger.Info("no login to close", "session", sessionID)
			continue
		}
		login, err := graph.ParseVertexOfKind(open.LoginSessionID, graph.KindSessionLogin)
		if err != nil {
			s.logger.Error("could not logout session", "session", open.String(), "error", err)
			continue
		}

		state := open.State()
		state.Logout = logout
		if err := s.put(ctx, sess, graph.EdgeSessionLogout, login, state); err != nil {
			s.logger.Error("could not logout session", "session", open.String(), "error", err)
			continue
		}
		s.logger.Info("logged out session", "session", open.String())
	}
	return nil
}
