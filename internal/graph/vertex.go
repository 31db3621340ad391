package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned when a vertex, edge type or payload string
// cannot be decoded.
var ErrInvalidFormat = errors.New("invalid format")

// VertexKind identifies what a vertex represents.
type VertexKind string

const (
	KindUser           VertexKind = "User"
	KindSession        VertexKind = "Session"
	KindSessionLogin   VertexKind = "SessionLogin"
	KindDocument       VertexKind = "Document"
	KindDocumentS3     VertexKind = "DocumentS3"
	KindChecksumSha256 VertexKind = "ChecksumSha256"
	KindPersonalNumber VertexKind = "PersonalNumber"
	KindEmail          VertexKind = "Email"
	KindPhone          VertexKind = "Phone"
)

// vertexSeparator joins the kind prefix and the identifier.
const vertexSeparator = "-"

// Kinds lists every known vertex kind.
var Kinds = []VertexKind{
	KindUser,
	KindSession,
	KindSessionLogin,
	KindDocument,
	KindDocumentS3,
	KindChecksumSha256,
	KindPersonalNumber,
	KindEmail,
	KindPhone,
}

// Valid reports whether k is one of the known kinds.
func (k VertexKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Vertex is a typed, string-identified graph node.
type Vertex struct {
	Kind VertexKind
	ID   string
}

// NewVertex returns a vertex of the given kind.
func NewVertex(kind VertexKind, id string) Vertex {
	return Vertex{Kind: kind, ID: id}
}

func UserVertex(id string) Vertex            { return NewVertex(KindUser, id) }
func SessionVertex(id string) Vertex         { return NewVertex(KindSession, id) }
func SessionLoginVertex(id string) Vertex    { return NewVertex(KindSessionLogin, id) }
func DocumentVertex(id string) Vertex        { return NewVertex(KindDocument, id) }
func DocumentS3Vertex(key string) Vertex     { return NewVertex(KindDocumentS3, key) }
func ChecksumSha256Vertex(sum string) Vertex { return NewVertex(KindChecksumSha256, sum) }
func PersonalNumberVertex(pno string) Vertex { return NewVertex(KindPersonalNumber, pno) }
func EmailVertex(addr string) Vertex         { return NewVertex(KindEmail, addr) }
func PhoneVertex(number string) Vertex       { return NewVertex(KindPhone, number) }

// String returns the canonical "<Kind>-<identifier>" form.
func (v Vertex) String() string {
	return string(v.Kind) + vertexSeparator + v.ID
}

// ParseVertex decodes the canonical string form of a vertex.
//
// Everything after the first "-" is the identifier, so identifiers containing
// "-" round-trip unchanged.
func ParseVertex(s string) (Vertex, error) {
	kind, id, ok := strings.Cut(s, vertexSeparator)
	if !ok {
		return Vertex{}, fmt.Errorf("%w: vertex %q has no kind separator", ErrInvalidFormat, s)
	}
	k := VertexKind(kind)
	if !k.Valid() {
		return Vertex{}, fmt.Errorf("%w: vertex %q has unknown kind %q", ErrInvalidFormat, s, kind)
	}
	return Vertex{Kind: k, ID: id}, nil
}

// ParseVertexOfKind decodes s and checks that it has the wanted kind.
func ParseVertexOfKind(s string, want VertexKind) (Vertex, error) {
	v, err := ParseVertex(s)
	if err != nil {
		return Vertex{}, err
	}
	if v.Kind != want {
		return Vertex{}, fmt.Errorf("%w: vertex %q is a %s, want %s", ErrInvalidFormat, s, v.Kind, want)
	}
	return v, nil
}
