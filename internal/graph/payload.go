package graph

import (
	"encoding/json"
	"fmt"
)

// VertexData is the payload an edge may carry for its destination vertex.
// Only S3Location, PlainText, UserProfile and SessionState implement it.
// A nil VertexData means "no payload".
type VertexData interface {
	vertexData() // Sealed
}

// S3Location references the blob holding a document's bytes.
type S3Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (S3Location) vertexData() {}

// PlainText is a free-form string payload.
type PlainText string

func (PlainText) vertexData() {}

// UserProfile carries the display names of a user. Empty fields are absent.
type UserProfile struct {
	Name      string `json:"name,omitempty"`
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

func (UserProfile) vertexData() {}

// SessionState is the event payload written on session edges.
// Timestamps are RFC 3339 strings; empty fields are absent.
type SessionState struct {
	Created  string `json:"created,omitempty"`
	Login    string `json:"login,omitempty"`
	Logout   string `json:"logout,omitempty"`
	AuthData string `json:"auth_data,omitempty"`
}

func (SessionState) vertexData() {}

// payloadEnvelope is the externally tagged wire form: exactly one field set.
type payloadEnvelope struct {
	S3Location   *S3Location   `json:"S3Location,omitempty"`
	PlainText    *string       `json:"PlainText,omitempty"`
	UserProfile  *UserProfile  `json:"UserProfile,omitempty"`
	SessionState *SessionState `json:"SessionState,omitempty"`
}

// MarshalPayload encodes a payload as a tagged union, e.g.
// {"S3Location":{"bucket":"b","key":"k"}}. A nil payload encodes to nil.
func MarshalPayload(data VertexData) ([]byte, error) {
	var env payloadEnvelope
	switch d := data.(type) {
	case nil:
		return nil, nil
	case S3Location:
		env.S3Location = &d
	case PlainText:
		s := string(d)
		env.PlainText = &s
	case UserProfile:
		env.UserProfile = &d
	case SessionState:
		env.SessionState = &d
	default:
		return nil, fmt.Errorf("marshal payload: unsupported type %T", data)
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return out, nil
}

// UnmarshalPayload decodes the tagged union produced by MarshalPayload.
// Empty input decodes to a nil payload.
func UnmarshalPayload(raw []byte) (VertexData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrInvalidFormat, err)
	}

	var (
		data VertexData
		set  int
	)
	if env.S3Location != nil {
		data, set = *env.S3Location, set+1
	}
	if env.PlainText != nil {
		data, set = PlainText(*env.PlainText), set+1
	}
	if env.UserProfile != nil {
		data, set = *env.UserProfile, set+1
	}
	if env.SessionState != nil {
		data, set = *env.SessionState, set+1
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: payload must carry exactly one variant, got %d", ErrInvalidFormat, set)
	}
	return data, nil
}
