package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/infosharesystems/vres-client/internal/client/domain"
	"github.com/infosharesystems/vres-client/internal/client/store"
	"github.com/infosharesystems/vres-client/pkg/cryptox"
)

// Session state keys.
const (
	keyToken           = "token"
	keyIdentity        = "identity"
	keyActiveSession   = "active_session"
	keySelectedProject = "selected_project_id"
	keyDepartment      = "department_id"
)

type sessionsRepo struct {
	q dbtx

	// db is set when the repo is reached outside a transaction; Put and
	// Clear open their own so multi-key writes stay atomic.
	db *sql.DB
}

// persistedIdentity is the sealed identity blob. The token is inside it as
// well as under its own key; the standalone key is what Clear removes and
// what Get requires, so a cleared session can never resurrect a token.
type persistedIdentity struct {
	UserID   string                `json:"userId"`
	Name     string                `json:"name"`
	Token    string                `json:"token"`
	Role     string                `json:"role"`
	Projects []persistedAssignment `json:"projects"`
}

type persistedAssignment struct {
	ProjectID    int64  `json:"projectId"`
	ProjectName  string `json:"projectName"`
	Role         string `json:"role"`
	DepartmentID int64  `json:"departmentId,omitempty"`
}

type persistedSession struct {
	Role         string   `json:"role"`
	Nav          []string `json:"nav"`
	DefaultRoute string   `json:"defaultRoute"`
}

func (r *sessionsRepo) Get(ctx context.Context) (domain.Identity, domain.ActiveSession, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT k, v FROM session_state`)
	if err != nil {
		return domain.Identity{}, domain.ActiveSession{}, err
	}
	defer rows.Close()

	state := make(map[string][]byte)
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return domain.Identity{}, domain.ActiveSession{}, err
		}
		state[k] = v
	}
	if err := rows.Err(); err != nil {
		return domain.Identity{}, domain.ActiveSession{}, err
	}

	// No token or no identity means no session.
	token, ok := state[keyToken]
	if !ok || len(token) == 0 {
		return domain.Identity{}, domain.ActiveSession{}, store.ErrNotFound
	}
	sealed, ok := state[keyIdentity]
	if !ok {
		return domain.Identity{}, domain.ActiveSession{}, store.ErrNotFound
	}

	// Corrupt persisted data reads as absent, never as a crash.
	plain, err := cryptox.Open(sealed)
	if err != nil {
		return domain.Identity{}, domain.ActiveSession{}, store.ErrNotFound
	}
	var pid persistedIdentity
	if err := json.Unmarshal(plain, &pid); err != nil {
		return domain.Identity{}, domain.ActiveSession{}, store.ErrNotFound
	}

	var ps persistedSession
	if raw, ok := state[keyActiveSession]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &ps); err != nil {
			return domain.Identity{}, domain.ActiveSession{}, store.ErrNotFound
		}
	}

	id := domain.Identity{
		UserID: pid.UserID,
		Name:   pid.Name,
		Token:  string(token),
		Role:   domain.Role(pid.Role),
	}
	for _, a := range pid.Projects {
		id.Projects = append(id.Projects, domain.ProjectAssignment{
			ProjectID:    a.ProjectID,
			ProjectName:  a.ProjectName,
			Role:         domain.Role(a.Role),
			DepartmentID: a.DepartmentID,
		})
	}

	as := domain.ActiveSession{
		Role:              domain.Role(ps.Role),
		Nav:               ps.Nav,
		DefaultRoute:      ps.DefaultRoute,
		SelectedProjectID: parseInt(state[keySelectedProject]),
		DepartmentID:      parseInt(state[keyDepartment]),
	}

	return id, as, nil
}

func (r *sessionsRepo) Put(ctx context.Context, id domain.Identity, as domain.ActiveSession) error {
	if r.db != nil {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if err := putSession(ctx, tx, id, as); err != nil {
			return err
		}
		return tx.Commit()
	}
	return putSession(ctx, r.q, id, as)
}

func (r *sessionsRepo) Clear(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM session_state`)
	return err
}

func putSession(ctx context.Context, q dbtx, id domain.Identity, as domain.ActiveSession) error {
	pid := persistedIdentity{
		UserID: id.UserID,
		Name:   id.Name,
		Token:  id.Token,
		Role:   string(id.Role),
	}
	for _, a := range id.Projects {
		pid.Projects = append(pid.Projects, persistedAssignment{
			ProjectID:    a.ProjectID,
			ProjectName:  a.ProjectName,
			Role:         string(a.Role),
			DepartmentID: a.DepartmentID,
		})
	}

	plain, err := json.Marshal(pid)
	if err != nil {
		return err
	}
	sealed, err := cryptox.Seal(plain)
	if err != nil {
		return err
	}

	session, err := json.Marshal(persistedSession{
		Role:         string(as.Role),
		Nav:          as.Nav,
		DefaultRoute: as.DefaultRoute,
	})
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	for _, kv := range []struct {
		k string
		v []byte
	}{
		{keyToken, []byte(id.Token)},
		{keyIdentity, sealed},
		{keyActiveSession, session},
		{keySelectedProject, formatInt(as.SelectedProjectID)},
		{keyDepartment, formatInt(as.DepartmentID)},
	} {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO session_state (k, v, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT (k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`,
			kv.k, kv.v, now,
		); err != nil {
			return err
		}
	}
	return nil
}

func formatInt(v int64) []byte {
	if v == 0 {
		return nil
	}
	return []byte(strconv.FormatInt(v, 10))
}

func parseInt(raw []byte) int64 {
	if len(raw) == 0 {
		return 0
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
