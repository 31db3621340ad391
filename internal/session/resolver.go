// Package session reconciles the append-only edge log under a session vertex
// into Session aggregates, one per open login attempt.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/insignia/internal/graph"
)

// UserLookup resolves the user linked to a session.
// A nil user with a nil error means the user has no edges.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*graph.User, error)
}

// Resolver folds session_* edges into Session aggregates.
type Resolver struct {
	users  UserLookup
	logger *slog.Logger
}

// NewResolver creates a resolver. A nil logger means slog.Default().
func NewResolver(users UserLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{users: users, logger: logger}
}

// Resolve reconstructs the sessions recorded under sessionID from its
// outgoing session_* edges.
//
// Login attempts whose SessionLogin vertex also carries a logout are dropped.
// When no attempt remains open a single anonymous aggregate is returned,
// carrying only the creation time and the linked user. An empty edge log
// yields no aggregates at all.
//
// The only error returned is a failed user lookup.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, edges []graph.Edge) ([]graph.Session, error) {
	if len(edges) == 0 {
		return []graph.Session{}, nil
	}

	var (
		created string
		user    *graph.User
		logins  = make(map[string]graph.SessionState)
		logouts = make(map[string]struct{})
	)

	for _, edge := range edges {
		dst, err := edge.DestinationVertex()
		if err != nil {
			r.logger.Warn("skipping session edge with malformed destination",
				"session", sessionID,
				"edge_key", edge.Key,
				"error", err,
			)
			continue
		}

		switch dst.Kind {
		case graph.KindSession:
			if state, ok := edge.Payload.(graph.SessionState); ok {
				created = state.Created
			}

		case graph.KindUser:
			u, err := r.users.GetUser(ctx, edge.Destination)
			if err != nil {
				return nil, fmt.Errorf("resolve session %q: %w", sessionID, err)
			}
			user = u

		case graph.KindSessionLogin:
			state, ok := edge.Payload.(graph.SessionState)
			if !ok {
				r.logger.Warn("login edge without session state",
					"session", sessionID,
					"edge_key", edge.Key,
				)
				continue
			}
			if state.Login != "" {
				if _, dup := logins[edge.Destination]; dup {
					r.logger.Error("duplicate login entry",
						"session", sessionID,
						"login_vertex", edge.Destination,
					)
				}
				logins[edge.Destination] = state
			}
			if state.Logout != "" {
				logouts[edge.Destination] = struct{}{}
			}

		default:
			r.logger.Info("ignoring unknown session property",
				"session", sessionID,
				"destination", edge.Destination,
			)
		}
	}

	for loginID := range logouts {
		delete(logins, loginID)
	}

	if len(logins) == 0 {
		return []graph.Session{{
			SessionID: sessionID,
			Created:   created,
			User:      user,
		}}, nil
	}

	loginIDs := make([]string, 0, len(logins))
	for loginID := range logins {
		loginIDs = append(loginIDs, loginID)
	}
	sort.Strings(loginIDs)

	sessions := make([]graph.Session, 0, len(loginIDs))
	for _, loginID := range loginIDs {
		state := logins[loginID]
		sessions = append(sessions, graph.Session{
			SessionID:      sessionID,
			Created:        created,
			LoginSessionID: loginID,
			Login:          state.Login,
			Logout:         state.Logout,
			AuthData:       state.AuthData,
			User:           user,
		})
	}
	return sessions, nil
}
