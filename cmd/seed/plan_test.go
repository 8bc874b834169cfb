package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddyai/buddy-server-go/internal/schema"
)

func TestBuildPlan(t *testing.T) {
	plan := buildPlan(42, 2, 3, 2)

	require.Len(t, plan, 2)
	for _, su := range plan {
		assert.NotEmpty(t, su.User.ID)
		assert.Contains(t, su.User.Email, "@")
		assert.GreaterOrEqual(t, len(su.Password), 8)
		require.Len(t, su.Agents, 3)
		require.Len(t, su.Meetings, 6)

		agentIDs := map[string]bool{}
		for _, agent := range su.Agents {
			assert.Equal(t, su.User.ID, agent.UserID)
			assert.NoError(t, schema.Validate(&schema.AgentInsert{Name: agent.Name, Instructions: agent.Instructions}))
			agentIDs[agent.ID] = true
		}
		for _, meeting := range su.Meetings {
			assert.Equal(t, su.User.ID, meeting.UserID)
			assert.True(t, agentIDs[meeting.AgentID], "meeting must reference one of the user's agents")
		}
	}
}

func TestBuildPlan_DeterministicNames(t *testing.T) {
	a := buildPlan(7, 1, 1, 1)
	b := buildPlan(7, 1, 1, 1)

	assert.Equal(t, a[0].User.Email, b[0].User.Email)
	assert.Equal(t, a[0].Agents[0].Name, b[0].Agents[0].Name)
	assert.Equal(t, a[0].Meetings[0].Name, b[0].Meetings[0].Name)
}
