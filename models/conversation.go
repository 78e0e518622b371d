package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Sender roles. These are the values stored in messages.sender and carried on
// the wire; clients never get to pick them directly.
const (
	RoleProfessor = "profesor"
	RoleStudent   = "alumno"
)

// ValidRole reports whether s names one of the two user roles.
func ValidRole(s string) bool {
	return s == RoleProfessor || s == RoleStudent
}

// ConversationKey identifies a conversation by its (professor, student) pair.
// Every entry point — socket events and REST handlers alike — must build one
// through ParseConversationKey so malformed input never reaches the store.
type ConversationKey struct {
	ProfessorID int
	StudentID   int
}

// ParseConversationKey parses a room token of the form "<idprof>-<idalumno>".
func ParseConversationKey(token string) (ConversationKey, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return ConversationKey{}, fmt.Errorf("invalid room token %q", token)
	}

	professorID, err := strconv.Atoi(parts[0])
	if err != nil {
		return ConversationKey{}, fmt.Errorf("invalid professor id in room token %q", token)
	}

	studentID, err := strconv.Atoi(parts[1])
	if err != nil {
		return ConversationKey{}, fmt.Errorf("invalid student id in room token %q", token)
	}

	return ConversationKey{ProfessorID: professorID, StudentID: studentID}, nil
}

// RoomToken returns the wire encoding of the key.
func (k ConversationKey) RoomToken() string {
	return fmt.Sprintf("%d-%d", k.ProfessorID, k.StudentID)
}

// DeriveSender maps an untrusted sender id onto a role. The id must match one
// side of the conversation.
func (k ConversationKey) DeriveSender(senderID int) (string, error) {
	switch senderID {
	case k.ProfessorID:
		return RoleProfessor, nil
	case k.StudentID:
		return RoleStudent, nil
	}
	return "", fmt.Errorf("sender id %d is not a participant of conversation %s", senderID, k.RoomToken())
}
