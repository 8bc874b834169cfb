package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
)

// setupTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// every table. Tests are skipped when the variable is unset.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, database.Migrate(url))

	db, err := database.Connect(url)
	require.NoError(t, err)

	_, err = db.ExecContext(context.Background(), `
		TRUNCATE call_intents, meetings, agents, verifications, accounts, sessions, users CASCADE
	`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *database.DB, name string) *model.User {
	t.Helper()
	user, err := NewUserRepository(db.DB).Create(context.Background(), model.CreateUserParams{
		ID:    uuid.NewString(),
		Name:  name,
		Email: uuid.NewString() + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func createTestAgent(t *testing.T, db *database.DB, userID, name string) *model.Agent {
	t.Helper()
	agent, err := NewAgentRepository(db.DB).Create(context.Background(), model.CreateAgentParams{
		ID:           uuid.NewString(),
		Name:         name,
		UserID:       userID,
		Instructions: "Be helpful",
	})
	require.NoError(t, err)
	return agent
}
