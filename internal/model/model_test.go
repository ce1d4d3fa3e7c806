package model

import "testing"

func TestSession_HasParticipant(t *testing.T) {
	s := &Session{Users: []int64{1, 3}}

	if !s.HasParticipant(1) {
		t.Error("expected user 1 to participate")
	}
	if s.HasParticipant(2) {
		t.Error("expected user 2 not to participate")
	}

	empty := &Session{}
	if empty.HasParticipant(1) {
		t.Error("session without users should have no participants")
	}
}

func TestAPIError_Error(t *testing.T) {
	err := NewSessionNotFoundError(42)

	if got, want := err.Error(), "[SESSION_NOT_FOUND] Session not found: 42"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewEmailTakenError_Message(t *testing.T) {
	err := NewEmailTakenError()

	if err.Code != ErrCodeEmailTaken {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeEmailTaken)
	}
	if err.Message != "Error: Email is already taken!" {
		t.Errorf("Message = %q", err.Message)
	}
}
