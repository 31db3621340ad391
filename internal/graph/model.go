package graph

import (
	"fmt"
	"strings"
)

// User is assembled on read from a user vertex's outgoing usr_* edges.
// Empty fields were not recorded.
type User struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name,omitempty"`
	GivenName      string `json:"given_name,omitempty"`
	Surname        string `json:"surname,omitempty"`
	PersonalNumber string `json:"personal_number,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

func (u User) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "User{user_id: %q", u.UserID)
	writeOptional(&b, "name", u.Name)
	writeOptional(&b, "given_name", u.GivenName)
	writeOptional(&b, "surname", u.Surname)
	writeOptional(&b, "personal_number", u.PersonalNumber)
	writeOptional(&b, "email", u.Email)
	writeOptional(&b, "phone", u.Phone)
	b.WriteString("}")
	return b.String()
}

// Session is the read model of one login attempt under a session vertex.
// LoginSessionID is empty for an anonymous session.
type Session struct {
	SessionID      string `json:"session_id"`
	Created        string `json:"created,omitempty"`
	LoginSessionID string `json:"login_session_id,omitempty"`
	Login          string `json:"login,omitempty"`
	Logout         string `json:"logout,omitempty"`
	AuthData       string `json:"auth_data,omitempty"`
	User           *User  `json:"user,omitempty"`
}

// State returns the session fields as an event payload.
func (s Session) State() SessionState {
	return SessionState{
		Created:  s.Created,
		Login:    s.Login,
		Logout:   s.Logout,
		AuthData: s.AuthData,
	}
}

// Authenticated reports whether the session carries an open login attempt.
func (s Session) Authenticated() bool {
	return s.LoginSessionID != ""
}

func (s Session) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session{session_id: %q", s.SessionID)
	writeOptional(&b, "created", s.Created)
	writeOptional(&b, "login_session_id", s.LoginSessionID)
	writeOptional(&b, "login", s.Login)
	writeOptional(&b, "logout", s.Logout)
	writeOptional(&b, "auth_data", s.AuthData)
	if s.User != nil {
		fmt.Fprintf(&b, ", user: %s", s.User)
	} else {
		b.WriteString(", user: None")
	}
	b.WriteString("}")
	return b.String()
}

// DocumentReference points at a document a user has access to.
type DocumentReference struct {
	DocID string `json:"doc_id"`
}

// Document is the read model assembled from a document vertex's neighborhood.
type Document struct {
	DocID        string      `json:"doc_id"`
	S3           *S3Location `json:"s3,omitempty"`
	Checksum     string      `json:"checksum,omitempty"`
	Owners       []string    `json:"owners"`
	Readers      []string    `json:"readers"`
	SignRequests []string    `json:"sign_requests"`
	Signatures   []string    `json:"signatures"`
}

func (d Document) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document{doc_id: %q", d.DocID)
	if d.S3 != nil {
		fmt.Fprintf(&b, ", s3: %q/%q", d.S3.Bucket, d.S3.Key)
	} else {
		b.WriteString(", s3: None")
	}
	writeOptional(&b, "checksum", d.Checksum)
	fmt.Fprintf(&b, ", owners: %q, readers: %q, sign_requests: %q, signatures: %q}",
		d.Owners, d.Readers, d.SignRequests, d.Signatures)
	return b.String()
}

func writeOptional(b *strings.Builder, name, value string) {
	if value == "" {
		fmt.Fprintf(b, ", %s: None", name)
		return
	}
	fmt.Fprintf(b, ", %s: %q", name, value)
}
