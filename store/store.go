package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/chat_backend/models"
	"gorm.io/gorm"
)

// ErrMessageNotFound is returned when a delete targets a message id that does
// not exist.
var ErrMessageNotFound = errors.New("message not found")

// Store translates chat operations into parameterized statements against the
// messages table.
type Store struct {
	db *gorm.DB
}

// New creates a store on top of an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ChatSummary is one row of a user's conversation list: the counterpart and
// the most recent message exchanged with them.
type ChatSummary struct {
	OtherUserName string    `gorm:"column:other_user_name" json:"otherUserName"`
	ProfessorID   int       `gorm:"column:idprof" json:"idprof"`
	StudentID     int       `gorm:"column:idalumno" json:"idalumno"`
	LastMessage   string    `gorm:"column:last_message" json:"lastMessage"`
	Timestamp     time.Time `gorm:"column:timestamp" json:"timestamp"`
}

// Insert persists one message and reports whether it was the first of its
// conversation. The history check and the write share a transaction so two
// near-simultaneous first messages cannot both observe an empty conversation.
// A zero timestamp defaults to the current server time.
func (s *Store) Insert(key models.ConversationKey, content, sender string, timestamp time.Time) (uint, bool, error) {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	message := models.Message{
		ProfessorID: key.ProfessorID,
		StudentID:   key.StudentID,
		Content:     content,
		Sender:      sender,
		Timestamp:   timestamp,
	}

	var first bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent inserts for the same pair. Under READ
		// COMMITTED two transactions would otherwise both count zero prior
		// rows and both report a new conversation. The lock is released at
		// commit. SQLite's single-writer model serializes on its own.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)",
				key.ProfessorID, key.StudentID).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&models.Message{}).
			Where("idprof = ? AND idalumno = ?", key.ProfessorID, key.StudentID).
			Count(&count).Error; err != nil {
			return err
		}
		first = count == 0

		return tx.Create(&message).Error
	})
	if err != nil {
		return 0, false, err
	}

	return message.ID, first, nil
}

// FetchConversation returns every message of the pair ordered ascending by
// timestamp. An empty conversation yields an empty slice, not an error.
func (s *Store) FetchConversation(key models.ConversationKey) ([]models.Message, error) {
	messages := []models.Message{}
	if err := s.db.Where("idprof = ? AND idalumno = ?", key.ProfessorID, key.StudentID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// The counterpart's display name comes from the directory table opposite the
// caller's role. The role picks one of two templates in code; it is never
// spliced into the SQL text. Ties on the max timestamp break on the highest
// id so each counterpart yields exactly one row.
const (
	chatListForProfessor = `
SELECT m.idprof, m.idalumno,
       COALESCE(a.nombre || ' ' || a.apellido, '') AS other_user_name,
       m.content AS last_message,
       m.timestamp
FROM messages m
JOIN (
    SELECT m1.idalumno, MAX(m1.id) AS last_id
    FROM messages m1
    JOIN (
        SELECT idalumno, MAX(timestamp) AS last_timestamp
        FROM messages
        WHERE idprof = ?
        GROUP BY idalumno
    ) newest ON m1.idalumno = newest.idalumno AND m1.timestamp = newest.last_timestamp
    WHERE m1.idprof = ?
    GROUP BY m1.idalumno
) latest ON m.id = latest.last_id
LEFT JOIN alumnos a ON m.idalumno = a."ID"
ORDER BY m.timestamp DESC`

	chatListForStudent = `
SELECT m.idprof, m.idalumno,
       COALESCE(p.nombre || ' ' || p.apellido, '') AS other_user_name,
       m.content AS last_message,
       m.timestamp
FROM messages m
JOIN (
    SELECT m1.idprof, MAX(m1.id) AS last_id
    FROM messages m1
    JOIN (
        SELECT idprof, MAX(timestamp) AS last_timestamp
        FROM messages
        WHERE idalumno = ?
        GROUP BY idprof
    ) newest ON m1.idprof = newest.idprof AND m1.timestamp = newest.last_timestamp
    WHERE m1.idalumno = ?
    GROUP BY m1.idprof
) latest ON m.id = latest.last_id
LEFT JOIN profesores p ON m.idprof = p."ID"
ORDER BY m.timestamp DESC`
)

// FetchConversationList returns, for a user acting in a role, one row per
// distinct counterpart with the counterpart's display name and the latest
// message exchanged, most recent conversation first.
func (s *Store) FetchConversationList(role string, userID int) ([]ChatSummary, error) {
	var query string
	switch role {
	case models.RoleProfessor:
		query = chatListForProfessor
	case models.RoleStudent:
		query = chatListForStudent
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	summaries := []ChatSummary{}
	if err := s.db.Raw(query, userID, userID).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// DeleteMessage removes a single message by id.
func (s *Store) DeleteMessage(id uint) error {
	result := s.db.Delete(&models.Message{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteConversation removes every message of the pair. Deleting an empty
// conversation is a no-op success.
func (s *Store) DeleteConversation(key models.ConversationKey) error {
	return s.db.Where("idprof = ? AND idalumno = ?", key.ProfessorID, key.StudentID).
		Delete(&models.Message{}).Error
}
