package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buddyai/buddy-server-go/internal/model"
)

func strPtr(s string) *string { return &s }

func TestBuildMeetingListQuery(t *testing.T) {
	t.Run("owner filter only", func(t *testing.T) {
		query, args := buildMeetingListQuery(MeetingFilter{UserID: "u1", Limit: 10, Offset: 0})

		assert.Contains(t, query, "WHERE m.user_id = $1")
		assert.Contains(t, query, "ORDER BY m.created_at DESC, m.id DESC")
		assert.Contains(t, query, "LIMIT $2 OFFSET $3")
		assert.NotContains(t, query, "ILIKE")
		assert.Equal(t, []any{"u1", 10, 0}, args)
	})

	t.Run("all filters numbered in order", func(t *testing.T) {
		status := model.MeetingStatusCompleted
		query, args := buildMeetingListQuery(MeetingFilter{
			UserID:  "u1",
			AgentID: strPtr("a1"),
			Status:  &status,
			Search:  strPtr("Standup"),
			Limit:   20,
			Offset:  40,
		})

		assert.Contains(t, query, "m.user_id = $1 AND m.agent_id = $2 AND m.status = $3 AND m.name ILIKE $4")
		assert.Contains(t, query, "LIMIT $5 OFFSET $6")
		assert.Equal(t, []any{"u1", "a1", "completed", "%Standup%", 20, 40}, args)
	})

	t.Run("empty optional filters are ignored", func(t *testing.T) {
		empty := model.MeetingStatus("")
		query, args := buildMeetingListQuery(MeetingFilter{
			UserID:  "u1",
			AgentID: strPtr(""),
			Status:  &empty,
			Search:  strPtr(""),
			Limit:   10,
		})

		assert.NotContains(t, query, "agent_id = $")
		assert.NotContains(t, query, "m.status =")
		assert.NotContains(t, query, "ILIKE")
		assert.Len(t, args, 3)
	})

	t.Run("joins agents and derives duration", func(t *testing.T) {
		query, _ := buildMeetingListQuery(MeetingFilter{UserID: "u1"})
		assert.Contains(t, query, "INNER JOIN agents a ON a.id = m.agent_id")
		assert.Contains(t, query, "EXTRACT(EPOCH FROM (m.ended_at - m.started_at))")
		assert.Contains(t, query, `a.name AS "agent.name"`)
	})
}

func TestBuildMeetingCountQuery(t *testing.T) {
	query, args := buildMeetingCountQuery(MeetingFilter{UserID: "u1", Search: strPtr("x"), Limit: 10, Offset: 10})

	assert.Contains(t, query, "SELECT COUNT(*)")
	assert.Contains(t, query, "m.name ILIKE $2")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []any{"u1", "%x%"}, args)
}

func TestBuildAgentQueries(t *testing.T) {
	t.Run("list carries meeting count", func(t *testing.T) {
		query, args := buildAgentListQuery(AgentFilter{UserID: "u1", Search: strPtr("bot"), Limit: 5, Offset: 5})

		assert.Contains(t, query, "AS meeting_count")
		assert.Contains(t, query, "a.user_id = $1 AND a.name ILIKE $2")
		assert.Contains(t, query, "ORDER BY a.created_at DESC, a.id DESC")
		assert.Contains(t, query, "LIMIT $3 OFFSET $4")
		assert.Equal(t, []any{"u1", "%bot%", 5, 5}, args)
	})

	t.Run("count has no paging", func(t *testing.T) {
		query, args := buildAgentCountQuery(AgentFilter{UserID: "u1", Limit: 5})
		assert.Equal(t, "SELECT COUNT(*) FROM agents a WHERE a.user_id = $1", query)
		assert.Equal(t, []any{"u1"}, args)
	})
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%meet%", containsPattern("meet"))
	assert.Equal(t, `%50\%%`, containsPattern("50%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\d%`, containsPattern(`c:\d`))
}

func TestWhereClause(t *testing.T) {
	w := &whereClause{}
	assert.Equal(t, "", w.String())

	w.add("x = ?", 1)
	w.add("y = ?", 2)
	assert.Equal(t, "WHERE x = $1 AND y = $2", w.String())

	limit, args := w.page(10, 20)
	assert.Equal(t, "LIMIT $3 OFFSET $4", limit)
	assert.Equal(t, []any{1, 2, 10, 20}, args)
	assert.Len(t, w.args, 2)
}
