package utils

import (
	"testing"

	"github.com/learnhub/chat_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("sekret", 7, models.RoleProfessor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := ParseToken("sekret", token)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
	assert.Equal(t, models.RoleProfessor, role)
}

func TestGenerateTokenRejectsUnknownRole(t *testing.T) {
	_, err := GenerateToken("sekret", 7, "admin")
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("sekret", 7, models.RoleStudent)
	require.NoError(t, err)

	_, _, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, _, err := ParseToken("sekret", "not-a-token")
	assert.Error(t, err)
}
