package entity

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/insignia/internal/graph"
)

// RegisterDocumentOwnership mints a Document vertex owned by userID and
// returns its vertex string.
func (s *Service) RegisterDocumentOwnership(ctx context.Context, userID string) (string, error) {
	user, err := graph.ParseVertexOfKind(userID, graph.KindUser)
	if err != nil {
		return "", fmt.Errorf("register document: %w", err)
	}

	doc := s.mint(graph.KindDocument)
	if err := s.put(ctx, user, graph.EdgeDocumentOwner, doc, nil); err != nil {
		return "", fmt.Errorf("register document: %w", err)
	}
	s.logger.Info("registered document", "document", doc.String(), "owner", userID)
	return doc.String(), nil
}

// CompleteDocumentUpload links an uploaded document to its blob location and
// content checksum.
func (s *Service) CompleteDocumentUpload(ctx context.Context, docID, bucket, key, checksum string) error {
	doc, err := graph.ParseVertexOfKind(docID, graph.KindDocument)
	if err != nil {
		return fmt.Errorf("complete upload: %w", err)
	}

	if err := s.put(ctx, doc, graph.EdgeDocumentSelf, doc, nil); err != nil {
		return fmt.Errorf("complete upload: %w", err)
	}
	if err := s.put(ctx, doc, graph.EdgeDocumentS3, graph.DocumentS3Vertex(key), graph.S3Location{Bucket: bucket, Key: key}); err != nil {
		return fmt.Errorf("complete upload: %w", err)
	}
	if err := s.put(ctx, doc, graph.EdgeDocumentChecksum, graph.ChecksumSha256Vertex(checksum), nil); err != nil {
		return fmt.Errorf("complete upload: %w", err)
	}
	return nil
}

// ListUserDocuments returns the documents userID owns or may read.
func (s *Service) ListUserDocuments(ctx context.Context, userID string) ([]graph.DocumentReference, error) {
	if _, err := graph.ParseVertexOfKind(userID, graph.KindUser); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	edges, err := s.graph.NeighborhoodWithPrefix(ctx, userID, graph.PrefixDocumentACL)
	if err != nil {
		return nil, fmt.Errorf("list documents %q: %w", userID, err)
	}

	refs := make([]graph.DocumentReference, 0, len(edges))
	for _, edge := range edges {
		refs = append(refs, graph.DocumentReference{DocID: edge.Destination})
	}
	return refs, nil
}

// GrantDocumentReader gives userID read access to docID.
func (s *Service) GrantDocumentReader(ctx context.Context, docID, userID string) error {
	doc, user, err := parseDocAndUser(docID, userID)
	if err != nil {
		return fmt.Errorf("grant reader: %w", err)
	}
	if err := s.put(ctx, user, graph.EdgeDocumentReader, doc, nil); err != nil {
		return fmt.Errorf("grant reader: %w", err)
	}
	return nil
}

// RequestSignature asks userID to sign docID.
func (s *Service) RequestSignature(ctx context.Context, docID, userID string) error {
	doc, user, err := parseDocAndUser(docID, userID)
	if err != nil {
		return fmt.Errorf("request signature: %w", err)
	}
	if err := s.put(ctx, doc, graph.EdgeDocumentSignRequest, user, nil); err != nil {
		return fmt.Errorf("request signature: %w", err)
	}
	return nil
}

// RecordSignature stores the signature userID made over docID.
func (s *Service) RecordSignature(ctx context.Context, docID, userID, signature string) error {
	doc, user, err := parseDocAndUser(docID, userID)
	if err != nil {
		return fmt.Errorf("record signature: %w", err)
	}
	if err := s.put(ctx, doc, graph.EdgeDocumentSignature, user, graph.PlainText(signature)); err != nil {
		return fmt.Errorf("record signature: %w", err)
	}
	return nil
}

// GetDocument folds the neighborhood of docID into a Document.
// A document with no incident edges is an invalid reference.
func (s *Service) GetDocument(ctx context.Context, docID string) (*graph.Document, error) {
	if _, err := graph.ParseVertexOfKind(docID, graph.KindDocument); err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	edges, err := s.graph.Neighborhood(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get document %q: %w", docID, err)
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("get document: %w", invalidDocument(docID))
	}

	doc := &graph.Document{
		DocID:        docID,
		Owners:       []string{},
		Readers:      []string{},
		SignRequests: []string{},
		Signatures:   []string{},
	}
	for _, edge := range edges {
		if edge.IsSelfLoop() {
			continue
		}
		t, err := edge.Type()
		if err != nil {
			s.logger.Warn("skipping document edge with unknown type", "document", docID, "edge_key", edge.Key)
			continue
		}

		switch {
		case t == graph.EdgeDocumentOwner && edge.Destination == docID:
			doc.Owners = append(doc.Owners, edge.Source)
		case t == graph.EdgeDocumentReader && edge.Destination == docID:
			doc.Readers = append(doc.Readers, edge.Source)
		case edge.Source != docID:
			s.logger.Info("ignoring incoming document edge", "document", docID, "edge_key", edge.Key)
		case t == graph.EdgeDocumentS3:
			if loc, ok := edge.Payload.(graph.S3Location); ok {
				doc.S3 = &loc
			}
		case t == graph.EdgeDocumentChecksum:
			if v, err := edge.DestinationVertex(); err == nil {
				doc.Checksum = v.ID
			}
		case t == graph.EdgeDocumentSignRequest:
			doc.SignRequests = append(doc.SignRequests, edge.Destination)
		case t == graph.EdgeDocumentSignature:
			doc.Signatures = append(doc.Signatures, edge.Destination)
		}
	}

	sort.Strings(doc.Owners)
	sort.Strings(doc.Readers)
	sort.Strings(doc.SignRequests)
	sort.Strings(doc.Signatures)
	return doc, nil
}

func parseDocAndUser(docID, userID string) (graph.Vertex, graph.Vertex, error) {
	doc, err := graph.ParseVertexOfKind(docID, graph.KindDocument)
	if err != nil {
		return graph.Vertex{}, graph.Vertex{}, err
	}
	user, err := graph.ParseVertexOfKind(userID, graph.KindUser)
	if err != nil {
		return graph.Vertex{}, graph.Vertex{}, err
	}
	return doc, user, nil
}
