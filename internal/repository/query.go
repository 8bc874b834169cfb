package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/buddyai/buddy-server-go/internal/model"
)

// MeetingFilter narrows meeting list queries. UserID is always applied.
type MeetingFilter struct {
	UserID  string
	AgentID *string
	Status  *model.MeetingStatus
	Search  *string
	Limit   int
	Offset  int
}

// AgentFilter narrows agent list queries. UserID is always applied.
type AgentFilter struct {
	UserID string
	Search *string
	Limit  int
	Offset int
}

// whereClause accumulates AND-ed conditions, numbering "?" placeholders as
// $1..$n in the order they are added.
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the full argument list.
func (w *whereClause) page(limit, offset int) (string, []any) {
	args := make([]any, 0, len(w.args)+2)
	args = append(args, w.args...)
	args = append(args, limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s matched literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

const meetingSelect = `
	SELECT
		m.*,
		a.id AS "agent.id",
		a.name AS "agent.name",
		a.user_id AS "agent.user_id",
		a.instructions AS "agent.instructions",
		a.created_at AS "agent.created_at",
		a.updated_at AS "agent.updated_at",
		EXTRACT(EPOCH FROM (m.ended_at - m.started_at))::float8 AS duration
	FROM meetings m
	INNER JOIN agents a ON a.id = m.agent_id`

func meetingWhere(f MeetingFilter) *whereClause {
	w := &whereClause{}
	w.add("m.user_id = ?", f.UserID)
	if f.AgentID != nil && *f.AgentID != "" {
		w.add("m.agent_id = ?", *f.AgentID)
	}
	if f.Status != nil && *f.Status != "" {
		w.add("m.status = ?", string(*f.Status))
	}
	if f.Search != nil && *f.Search != "" {
		w.add(`m.name ILIKE ? ESCAPE '\'`, containsPattern(*f.Search))
	}
	return w
}

func buildMeetingListQuery(f MeetingFilter) (string, []any) {
	w := meetingWhere(f)
	limit, args := w.page(f.Limit, f.Offset)
	query := strings.Join([]string{
		meetingSelect,
		w.String(),
		"ORDER BY m.created_at DESC, m.id DESC",
		limit,
	}, "\n\t")
	return query, args
}

func buildMeetingCountQuery(f MeetingFilter) (string, []any) {
	w := meetingWhere(f)
	query := "SELECT COUNT(*) FROM meetings m INNER JOIN agents a ON a.id = m.agent_id " + w.String()
	return query, w.args
}

const agentSelect = `
	SELECT
		a.*,
		(SELECT COUNT(*) FROM meetings m WHERE m.agent_id = a.id) AS meeting_count
	FROM agents a`

func agentWhere(f AgentFilter) *whereClause {
	w := &whereClause{}
	w.add("a.user_id = ?", f.UserID)
	if f.Search != nil && *f.Search != "" {
		w.add(`a.name ILIKE ? ESCAPE '\'`, containsPattern(*f.Search))
	}
	return w
}

func buildAgentListQuery(f AgentFilter) (string, []any) {
	w := agentWhere(f)
	limit, args := w.page(f.Limit, f.Offset)
	query := strings.Join([]string{
		agentSelect,
		w.String(),
		"ORDER BY a.created_at DESC, a.id DESC",
		limit,
	}, "\n\t")
	return query, args
}

func buildAgentCountQuery(f AgentFilter) (string, []any) {
	w := agentWhere(f)
	return "SELECT COUNT(*) FROM agents a " + w.String(), w.args
}
