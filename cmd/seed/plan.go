package main

import (
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/util"
)

var agentRoles = []string{
	"math tutor", "interview coach", "language partner", "sales trainer", "standup facilitator",
}

type seedUser struct {
	User     model.CreateUserParams
	Password string
	Agents   []model.CreateAgentParams
	Meetings []model.CreateMeetingParams
}

// buildPlan generates a deterministic data set for the given seed so repeated
// runs against a fresh database produce the same rows.
func buildPlan(seed int64, users, agentsPerUser, meetingsPerAgent int) []seedUser {
	faker := gofakeit.New(seed)

	plan := make([]seedUser, 0, users)
	for i := 0; i < users; i++ {
		person := faker.Person()
		userID := uuid.NewString()
		su := seedUser{
			User: model.CreateUserParams{
				ID:    userID,
				Name:  person.FirstName + " " + person.LastName,
				Email: util.NormalizeEmail(person.Contact.Email),
			},
			Password: faker.Password(true, true, true, false, false, 16),
		}

		for a := 0; a < agentsPerUser; a++ {
			role := agentRoles[faker.Number(0, len(agentRoles)-1)]
			agent := model.CreateAgentParams{
				ID:           uuid.NewString(),
				Name:         faker.FirstName() + " the " + role,
				UserID:       userID,
				Instructions: "You are a friendly " + role + ". " + faker.Sentence(12),
			}
			su.Agents = append(su.Agents, agent)

			for m := 0; m < meetingsPerAgent; m++ {
				su.Meetings = append(su.Meetings, model.CreateMeetingParams{
					ID:      uuid.NewString(),
					Name:    faker.BuzzWord() + " " + faker.HipsterWord() + " session",
					UserID:  userID,
					AgentID: agent.ID,
				})
			}
		}

		plan = append(plan, su)
	}
	return plan
}
