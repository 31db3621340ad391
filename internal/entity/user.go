package entity

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/insignia/internal/graph"
)

// NewUser holds the fields recorded when a user is created.
// Email and Phone are optional; empty means not provided.
type NewUser struct {
	PersonalNumber string
	Name           string
	GivenName      string
	Surname        string
	Email          string
	Phone          string
}

// CreateUser mints a User vertex and links its profile and contact points.
// It returns the vertex string of the new user.
//
// Names are stored NFC-normalized.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (string, error) {
	if in.PersonalNumber == "" {
		return "", fmt.Errorf("create user: %w: empty personal number", graph.ErrInvalidFormat)
	}

	user := s.mint(graph.KindUser)
	profile := graph.UserProfile{
		Name:      norm.NFC.String(in.Name),
		GivenName: norm.NFC.String(in.GivenName),
		Surname:   norm.NFC.String(in.Surname),
	}

	if err := s.put(ctx, user, graph.EdgeUserSelf, user, profile); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if err := s.put(ctx, user, graph.EdgeUserPersonalNumber, graph.PersonalNumberVertex(in.PersonalNumber), nil); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if in.Email != "" {
		if err := s.put(ctx, user, graph.EdgeUserEmail, graph.EmailVertex(in.Email), nil); err != nil {
			return "", fmt.Errorf("create user: %w", err)
		}
	}
	if in.Phone != "" {
		if err := s.put(ctx, user, graph.EdgeUserPhone, graph.PhoneVertex(in.Phone), nil); err != nil {
			return "", fmt.Errorf("create user: %w", err)
		}
	}

	s.logger.Info("created user", "user", user.String())
	return user.String(), nil
}

// GetUser assembles a user from the usr_* edges of userID.
// It returns nil with no error when the user has no edges.
func (s *Service) GetUser(ctx context.Context, userID string) (*graph.User, error) {
	if _, err := graph.ParseVertexOfKind(userID, graph.KindUser); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	edges, err := s.graph.NeighborhoodWithPrefix(ctx, userID, graph.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", userID, err)
	}
	if len(edges) == 0 {
		return nil, nil
	}

	user := &graph.User{UserID: userID}
	for _, edge := range edges {
		dst, err := edge.DestinationVertex()
		if err != nil {
			s.logger.Warn("skipping user edge with malformed destination", "user", userID, "edge_key", edge.Key, "error", err)
			continue
		}
		switch dst.Kind {
		case graph.KindEmail:
			user.Email = dst.ID
		case graph.KindPersonalNumber:
			user.PersonalNumber = dst.ID
		case graph.KindPhone:
			user.Phone = dst.ID
		case graph.KindUser:
			if profile, ok := edge.Payload.(graph.UserProfile); ok {
				user.Name = profile.Name
				user.GivenName = profile.GivenName
				user.Surname = profile.Surname
			}
		default:
			s.logger.Info("ignoring unknown user property", "user", userID, "destination", edge.Destination)
		}
	}
	return user, nil
}

// LookupUsersByPersonalNumber finds every user linked to a personal number.
//
// The profiles are fetched concurrently, at most LookupConcurrency at a time.
// Users are returned in index order; matches without any usr_* edges are
// dropped.
func (s *Service) LookupUsersByPersonalNumber(ctx context.Context, personalNumber string) ([]graph.User, error) {
	pno := graph.PersonalNumberVertex(personalNumber)
	edges, err := s.graph.IncomingEdges(ctx, pno.String())
	if err != nil {
		return nil, fmt.Errorf("lookup users by personal number: %w", err)
	}

	var userIDs []string
	for _, edge := range edges {
		if t, err := edge.Type(); err != nil || t != graph.EdgeUserPersonalNumber {
			continue
		}
		userIDs = append(userIDs, edge.Source)
	}

	found := make([]*graph.User, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	if s.lookupConcurrency > 0 {
		g.SetLimit(s.lookupConcurrency)
	}
	for i, id := range userIDs {
		g.Go(func() error {
			u, err := s.GetUser(gctx, id)
			if err != nil {
				return err
			}
			found[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lookup users by personal number: %w", err)
	}

	users := make([]graph.User, 0, len(found))
	for _, u := range found {
		if u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}
