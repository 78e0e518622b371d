package store

import (
	"errors"
	"testing"
	"time"

	"github.com/learnhub/chat_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Message{}, &models.Professor{}, &models.Student{}))
	return New(db), db
}

func TestInsertAndFetchConversationOrdering(t *testing.T) {
	st, _ := newTestStore(t)
	key := models.ConversationKey{ProfessorID: 1, StudentID: 2}

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	contents := []string{"hola", "qué tal", "bien"}
	for i, content := range contents {
		_, _, err := st.Insert(key, content, models.RoleProfessor, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	messages, err := st.FetchConversation(key)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	for i, msg := range messages {
		assert.Equal(t, contents[i], msg.Content)
		if i > 0 {
			assert.False(t, msg.Timestamp.Before(messages[i-1].Timestamp),
				"timestamps must be non-decreasing")
			assert.Greater(t, msg.ID, messages[i-1].ID)
		}
	}
}

func TestInsertReportsFirstMessage(t *testing.T) {
	st, _ := newTestStore(t)
	key := models.ConversationKey{ProfessorID: 1, StudentID: 2}

	_, first, err := st.Insert(key, "hola", models.RoleProfessor, time.Time{})
	require.NoError(t, err)
	assert.True(t, first)

	_, first, err = st.Insert(key, "otra vez", models.RoleStudent, time.Time{})
	require.NoError(t, err)
	assert.False(t, first)

	// An unrelated pair starts its own conversation
	other := models.ConversationKey{ProfessorID: 1, StudentID: 3}
	_, first, err = st.Insert(other, "hola", models.RoleProfessor, time.Time{})
	require.NoError(t, err)
	assert.True(t, first)
}

func TestInsertConcurrentFirstMessage(t *testing.T) {
	st, _ := newTestStore(t)
	key := models.ConversationKey{ProfessorID: 1, StudentID: 2}

	const writers = 8
	firsts := make(chan bool, writers)
	for i := 0; i < writers; i++ {
		go func() {
			_, first, err := st.Insert(key, "carrera", models.RoleProfessor, time.Time{})
			assert.NoError(t, err)
			firsts <- first
		}()
	}

	firstCount := 0
	for i := 0; i < writers; i++ {
		if <-firsts {
			firstCount++
		}
	}
	assert.Equal(t, 1, firstCount, "exactly one insert may observe a new conversation")

	messages, err := st.FetchConversation(key)
	require.NoError(t, err)
	assert.Len(t, messages, writers)
}

func TestInsertDefaultsTimestamp(t *testing.T) {
	st, _ := newTestStore(t)
	key := models.ConversationKey{ProfessorID: 4, StudentID: 5}

	_, _, err := st.Insert(key, "sin hora", models.RoleStudent, time.Time{})
	require.NoError(t, err)

	messages, err := st.FetchConversation(key)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.False(t, messages[0].Timestamp.IsZero())
	assert.WithinDuration(t, time.Now().UTC(), messages[0].Timestamp, time.Minute)
}

func TestFetchConversationEmpty(t *testing.T) {
	st, _ := newTestStore(t)

	messages, err := st.FetchConversation(models.ConversationKey{ProfessorID: 9, StudentID: 9})
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.NotNil(t, messages)
}

func TestDeleteMessage(t *testing.T) {
	st, _ := newTestStore(t)
	key := models.ConversationKey{ProfessorID: 1, StudentID: 2}

	id, _, err := st.Insert(key, "borrable", models.RoleProfessor, time.Time{})
	require.NoError(t, err)

	require.NoError(t, st.DeleteMessage(id))

	messages, err := st.FetchConversation(key)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestDeleteMessageNotFound(t *testing.T) {
	st, _ := newTestStore(t)

	err := st.DeleteMessage(12345)
	assert.True(t, errors.Is(err, ErrMessageNotFound))
}

func TestDeleteConversation(t *testing.T) {
	st, _ := newTestStore(t)
	key := models.ConversationKey{ProfessorID: 1, StudentID: 2}
	other := models.ConversationKey{ProfessorID: 1, StudentID: 3}

	_, _, err := st.Insert(key, "uno", models.RoleProfessor, time.Time{})
	require.NoError(t, err)
	_, _, err = st.Insert(key, "dos", models.RoleStudent, time.Time{})
	require.NoError(t, err)
	_, _, err = st.Insert(other, "ajeno", models.RoleProfessor, time.Time{})
	require.NoError(t, err)

	require.NoError(t, st.DeleteConversation(key))

	messages, err := st.FetchConversation(key)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// The other conversation is untouched
	messages, err = st.FetchConversation(other)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestDeleteConversationIdempotent(t *testing.T) {
	st, _ := newTestStore(t)

	key := models.ConversationKey{ProfessorID: 8, StudentID: 9}
	assert.NoError(t, st.DeleteConversation(key))
	assert.NoError(t, st.DeleteConversation(key))
}

func TestFetchConversationList(t *testing.T) {
	st, db := newTestStore(t)

	require.NoError(t, db.Create(&models.Professor{ID: 1, FirstName: "Marta", LastName: "Ruiz"}).Error)
	require.NoError(t, db.Create(&models.Student{ID: 2, FirstName: "Ana", LastName: "García"}).Error)
	require.NoError(t, db.Create(&models.Student{ID: 3, FirstName: "Luis", LastName: "Pérez"}).Error)

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	keyAna := models.ConversationKey{ProfessorID: 1, StudentID: 2}
	_, _, err := st.Insert(keyAna, "primer mensaje", models.RoleProfessor, base)
	require.NoError(t, err)
	_, _, err = st.Insert(keyAna, "último mensaje", models.RoleStudent, base.Add(2*time.Hour))
	require.NoError(t, err)

	keyLuis := models.ConversationKey{ProfessorID: 1, StudentID: 3}
	_, _, err = st.Insert(keyLuis, "hola luis", models.RoleProfessor, base.Add(time.Hour))
	require.NoError(t, err)

	chats, err := st.FetchConversationList(models.RoleProfessor, 1)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	// Most recent conversation first
	assert.Equal(t, "Ana García", chats[0].OtherUserName)
	assert.Equal(t, "último mensaje", chats[0].LastMessage)
	assert.Equal(t, 2, chats[0].StudentID)

	assert.Equal(t, "Luis Pérez", chats[1].OtherUserName)
	assert.Equal(t, "hola luis", chats[1].LastMessage)

	// The same pair seen from the student's side
	chats, err = st.FetchConversationList(models.RoleStudent, 2)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "Marta Ruiz", chats[0].OtherUserName)
	assert.Equal(t, 1, chats[0].ProfessorID)
}

func TestFetchConversationListTiedTimestamps(t *testing.T) {
	st, _ := newTestStore(t)
	key := models.ConversationKey{ProfessorID: 1, StudentID: 2}

	// Two messages of the pair sharing one timestamp must still collapse to
	// a single row, carrying the later insert
	ts := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	_, _, err := st.Insert(key, "primero", models.RoleProfessor, ts)
	require.NoError(t, err)
	_, _, err = st.Insert(key, "segundo", models.RoleStudent, ts)
	require.NoError(t, err)

	chats, err := st.FetchConversationList(models.RoleProfessor, 1)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "segundo", chats[0].LastMessage)

	chats, err = st.FetchConversationList(models.RoleStudent, 2)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "segundo", chats[0].LastMessage)
}

func TestFetchConversationListMissingDirectoryRow(t *testing.T) {
	st, _ := newTestStore(t)

	key := models.ConversationKey{ProfessorID: 1, StudentID: 99}
	_, _, err := st.Insert(key, "hola", models.RoleProfessor, time.Time{})
	require.NoError(t, err)

	chats, err := st.FetchConversationList(models.RoleProfessor, 1)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "", chats[0].OtherUserName)
}

func TestFetchConversationListUnknownRole(t *testing.T) {
	st, _ := newTestStore(t)

	_, err := st.FetchConversationList("admin", 1)
	assert.Error(t, err)
}
