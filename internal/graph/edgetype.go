package graph

import (
	"fmt"
	"strings"
)

// EdgeType is the relation kind of an edge. Each variant has one stable
// lowercase tag which prefixes the edge key.
type EdgeType string

const (
	EdgeSessionSelf   EdgeType = "session_self"
	EdgeSessionUser   EdgeType = "session_user"
	EdgeSessionLogin  EdgeType = "session_login"
	EdgeSessionLogout EdgeType = "session_logout"

	EdgeUserSelf           EdgeType = "usr_self"
	EdgeUserPersonalNumber EdgeType = "usr_personal_number"
	EdgeUserEmail          EdgeType = "usr_email"
	EdgeUserPhone          EdgeType = "usr_phone"

	EdgeDocumentSelf        EdgeType = "doc_self"
	EdgeDocumentOwner       EdgeType = "doc_acl_owner"
	EdgeDocumentReader      EdgeType = "doc_acl_reader"
	EdgeDocumentS3          EdgeType = "doc_s3"
	EdgeDocumentChecksum    EdgeType = "doc_checksum"
	EdgeDocumentSignRequest EdgeType = "doc_sign_request"
	EdgeDocumentSignature   EdgeType = "doc_signature"
)

// Edge key prefixes selecting a vertex's own namespace.
const (
	PrefixUser        = "usr_"
	PrefixSession     = "session_"
	PrefixDocumentACL = "doc_acl_"
	PrefixDocument    = "doc_"
)

// EdgeTypes lists every known edge type.
var EdgeTypes = []EdgeType{
	EdgeSessionSelf,
	EdgeSessionUser,
	EdgeSessionLogin,
	EdgeSessionLogout,
	EdgeUserSelf,
	EdgeUserPersonalNumber,
	EdgeUserEmail,
	EdgeUserPhone,
	EdgeDocumentSelf,
	EdgeDocumentOwner,
	EdgeDocumentReader,
	EdgeDocumentS3,
	EdgeDocumentChecksum,
	EdgeDocumentSignRequest,
	EdgeDocumentSignature,
}

// edgeKeySeparator separates the tag, source and destination in an edge key.
const edgeKeySeparator = "|"

// String returns the tag.
func (t EdgeType) String() string {
	return string(t)
}

// Valid reports whether t is one of the known edge types.
func (t EdgeType) Valid() bool {
	for _, known := range EdgeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseEdgeType decodes an edge type from a tag or a full edge key.
// Only the substring before the first "|" is inspected.
func ParseEdgeType(s string) (EdgeType, error) {
	tag, _, _ := strings.Cut(s, edgeKeySeparator)
	t := EdgeType(tag)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown edge tag %q", ErrInvalidFormat, tag)
	}
	return t, nil
}

// EdgeKey builds the canonical "<tag>|<source>|<destination>" key.
func EdgeKey(t EdgeType, source, destination Vertex) string {
	return string(t) + edgeKeySeparator + source.String() + edgeKeySeparator + destination.String()
}
