package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/infosharesystems/vres-client/internal/client/domain"
	"github.com/infosharesystems/vres-client/internal/client/store"
	"github.com/infosharesystems/vres-client/internal/client/store/drivers/sqlite"
	"github.com/infosharesystems/vres-client/pkg/vressdk"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestController(t *testing.T, handler http.HandlerFunc) (*Controller, store.Store) {
	t.Helper()

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unexpected request", http.StatusInternalServerError)
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st := newTestStore(t)
	return NewController(vressdk.NewClient(srv.URL), st, discardLogger()), st
}

func loginHandler(t *testing.T, resp vressdk.LoginResponse) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/vres/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func coordinatorLogin() vressdk.LoginResponse {
	return vressdk.LoginResponse{
		JWTToken: "tok-coord",
		UserID:   "u-77",
		Name:     "Asha",
		Role:     "PROJECT COORDINATOR",
		Projects: []vressdk.ProjectAssignment{
			{ProjectID: 1, ProjectName: "Flood Relief", Role: "PROJECT COORDINATOR"},
			{ProjectID: 2, ProjectName: "School Meals", Role: "MAKER", DepartmentID: 7},
		},
	}
}

func TestLoginCoordinatorAwaitsSelection(t *testing.T) {
	t.Parallel()

	c, st := newTestController(t, loginHandler(t, coordinatorLogin()))

	res, err := c.Login(context.Background(), "u-77", "pw")
	require.NoError(t, err)
	require.Equal(t, AwaitingProjectSelection, res.State)
	require.Equal(t, SelectProjectRoute, res.Route)
	require.Contains(t, res.Notice, "Asha")

	id, _, err := st.Sessions().Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-coord", id.Token)
	require.Len(t, id.Projects, 2)

	res, err = c.SelectProject(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, Active, res.State)
	require.Equal(t, "/dashboard", res.Route)

	as := c.ActiveSession()
	require.Equal(t, domain.RoleProjectCoordinator, as.Role)
	require.Equal(t, int64(1), as.SelectedProjectID)
	require.Equal(t, []string{"dashboard", "user-registration", "create-project"}, as.Nav)
}

func TestLoginAdminSkipsSelection(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, loginHandler(t, vressdk.LoginResponse{
		JWTToken: "tok-admin",
		UserID:   "u-1",
		Name:     "Root",
		Role:     "ADMIN",
	}))

	res, err := c.Login(context.Background(), "u-1", "pw")
	require.NoError(t, err)
	require.Equal(t, Active, res.State)
	require.Equal(t, "/dashboard", res.Route)
	require.Contains(t, c.ActiveSession().Nav, "initiate-project")
}

func TestLoginUnknownRoleLeavesNothing(t *testing.T) {
	t.Parallel()

	c, st := newTestController(t, loginHandler(t, vressdk.LoginResponse{
		JWTToken: "tok-x",
		UserID:   "u-9",
		Role:     "SUPERVISOR",
	}))

	res, err := c.Login(context.Background(), "u-9", "pw")
	require.Error(t, err)
	require.Equal(t, LoggedOut, res.State)
	require.Equal(t, LoggedOut, c.State())

	// The token must not have been persisted.
	_, _, err = st.Sessions().Get(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginWithoutAssignmentsIsActive(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, loginHandler(t, vressdk.LoginResponse{
		JWTToken: "tok-i",
		UserID:   "u-5",
		Name:     "Iris",
		Role:     "ISSUER",
	}))

	res, err := c.Login(context.Background(), "u-5", "pw")
	require.NoError(t, err)
	require.Equal(t, Active, res.State)
	require.Equal(t, "/create-voucher", res.Route)
	require.Contains(t, res.Notice, "no projects")
}

func TestLoginBackendRejection(t *testing.T) {
	t.Parallel()

	c, st := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	res, err := c.Login(context.Background(), "u-77", "wrong")
	require.Error(t, err)
	require.True(t, vressdk.IsAuthError(err))
	require.Equal(t, LoggedOut, res.State)

	_, _, err = st.Sessions().Get(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSelectProjectUnknownAssignment(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, loginHandler(t, coordinatorLogin()))

	_, err := c.Login(context.Background(), "u-77", "pw")
	require.NoError(t, err)

	_, err = c.SelectProject(context.Background(), 999)
	require.ErrorIs(t, err, ErrUnknownAssignment)
	require.Equal(t, AwaitingProjectSelection, c.State())
}

func TestSelectProjectCarriesDepartment(t *testing.T) {
	t.Parallel()

	c, st := newTestController(t, loginHandler(t, coordinatorLogin()))

	_, err := c.Login(context.Background(), "u-77", "pw")
	require.NoError(t, err)

	res, err := c.SelectProject(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "/upload-beneficiary-list", res.Route)

	as := c.ActiveSession()
	require.Equal(t, domain.RoleMaker, as.Role)
	require.Equal(t, int64(7), as.DepartmentID)

	_, gotAS, err := st.Sessions().Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, as, gotAS)
}

func TestSelectProjectSwitchesFromActive(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, loginHandler(t, coordinatorLogin()))

	_, err := c.Login(context.Background(), "u-77", "pw")
	require.NoError(t, err)

	_, err = c.SelectProject(context.Background(), 1)
	require.NoError(t, err)

	res, err := c.SelectProject(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, Active, res.State)
	require.Equal(t, domain.RoleMaker, c.ActiveSession().Role)
	require.Contains(t, res.Notice, "School Meals")
}

func TestRouteGuard(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, loginHandler(t, coordinatorLogin()))

	t.Run("logged out redirects to login", func(t *testing.T) {
		route, ok := c.RouteGuard("/dashboard")
		require.False(t, ok)
		require.Equal(t, LoginRoute, route)
	})

	_, err := c.Login(context.Background(), "u-77", "pw")
	require.NoError(t, err)

	t.Run("awaiting selection pins to selection", func(t *testing.T) {
		route, ok := c.RouteGuard("/dashboard")
		require.False(t, ok)
		require.Equal(t, SelectProjectRoute, route)

		route, ok = c.RouteGuard(SelectProjectRoute)
		require.True(t, ok)
		require.Equal(t, SelectProjectRoute, route)
	})

	_, err = c.SelectProject(context.Background(), 2)
	require.NoError(t, err)

	t.Run("active admits only the role's routes", func(t *testing.T) {
		route, ok := c.RouteGuard("/upload-beneficiary-list")
		require.True(t, ok)
		require.Equal(t, "/upload-beneficiary-list", route)

		route, ok = c.RouteGuard("/initiate-project")
		require.False(t, ok)
		require.Equal(t, "/upload-beneficiary-list", route)
	})
}

func TestLogoutClearsEverything(t *testing.T) {
	t.Parallel()

	c, st := newTestController(t, loginHandler(t, coordinatorLogin()))

	_, err := c.Login(context.Background(), "u-77", "pw")
	require.NoError(t, err)
	_, err = c.SelectProject(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, LoggedOut, c.State())
	require.Empty(t, c.Identity().Token)

	_, _, err = st.Sessions().Get(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)

	route, ok := c.RouteGuard("/dashboard")
	require.False(t, ok)
	require.Equal(t, LoginRoute, route)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-77",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestBootstrap(t *testing.T) {
	t.Parallel()

	identity := func(token string) domain.Identity {
		return domain.Identity{
			UserID: "u-77",
			Name:   "Asha",
			Token:  token,
			Role:   domain.RoleProjectCoordinator,
			Projects: []domain.ProjectAssignment{
				{ProjectID: 1, ProjectName: "Flood Relief", Role: domain.RoleProjectCoordinator},
			},
		}
	}

	t.Run("absent state lands in logged out", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestController(t, nil)

		res, err := c.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, LoggedOut, res.State)
		require.Equal(t, LoginRoute, res.Route)
	})

	t.Run("expired token clears the session", func(t *testing.T) {
		t.Parallel()
		c, st := newTestController(t, nil)

		tok := signedToken(t, time.Now().Add(-time.Hour))
		require.NoError(t, st.Sessions().Put(context.Background(), identity(tok), domain.ActiveSession{}))

		res, err := c.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, LoggedOut, res.State)
		require.Contains(t, res.Notice, "expired")

		_, _, err = st.Sessions().Get(context.Background())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("restores an active session and recomputes nav", func(t *testing.T) {
		t.Parallel()
		c, st := newTestController(t, nil)

		tok := signedToken(t, time.Now().Add(time.Hour))
		// Persist a stale nav list; bootstrap must replace it from the
		// role table.
		as := domain.ActiveSession{
			Role:              domain.RoleProjectCoordinator,
			SelectedProjectID: 1,
			Nav:               []string{"stale-route"},
			DefaultRoute:      "/stale",
		}
		require.NoError(t, st.Sessions().Put(context.Background(), identity(tok), as))

		res, err := c.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, Active, res.State)
		require.Equal(t, "/dashboard", res.Route)
		require.Equal(t, []string{"dashboard", "user-registration", "create-project"}, c.ActiveSession().Nav)
	})

	t.Run("resumes project selection when none was chosen", func(t *testing.T) {
		t.Parallel()
		c, st := newTestController(t, nil)

		tok := signedToken(t, time.Now().Add(time.Hour))
		require.NoError(t, st.Sessions().Put(context.Background(), identity(tok), domain.ActiveSession{}))

		res, err := c.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, AwaitingProjectSelection, res.State)
		require.Equal(t, SelectProjectRoute, res.Route)
	})

	t.Run("admin drops any persisted project selection", func(t *testing.T) {
		t.Parallel()
		c, st := newTestController(t, nil)

		tok := signedToken(t, time.Now().Add(time.Hour))
		id := domain.Identity{UserID: "u-1", Name: "Root", Token: tok, Role: domain.RoleAdmin}
		as := domain.ActiveSession{Role: domain.RoleAdmin, SelectedProjectID: 5, DepartmentID: 3}
		require.NoError(t, st.Sessions().Put(context.Background(), id, as))

		res, err := c.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, Active, res.State)
		require.Zero(t, c.ActiveSession().SelectedProjectID)
		require.Zero(t, c.ActiveSession().DepartmentID)
	})

	t.Run("opaque token is left to the backend", func(t *testing.T) {
		t.Parallel()
		c, st := newTestController(t, nil)

		require.NoError(t, st.Sessions().Put(context.Background(), identity("opaque-token"), domain.ActiveSession{}))

		res, err := c.Bootstrap(context.Background())
		require.NoError(t, err)
		require.Equal(t, AwaitingProjectSelection, res.State)
	})
}

func TestInFlightGuard(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	c, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jwtToken":"tok","userId":"u-1","name":"Root","role":"ADMIN"}`))
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "u-1", "pw")
		errCh <- err
	}()

	<-started
	_, err := c.Login(context.Background(), "u-1", "pw")
	require.ErrorIs(t, err, ErrBusy)
	_, err = c.SelectProject(context.Background(), 1)
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-errCh)
	require.Equal(t, Active, c.State())
}

func TestDeriveVisibleProjects(t *testing.T) {
	t.Parallel()

	all := []vressdk.Project{
		{ProjectID: 1, ProjectName: "Flood Relief"},
		{ProjectID: 2, ProjectName: "School Meals"},
		{ProjectID: 3, ProjectName: "Winter Kits"},
	}
	assignments := []domain.ProjectAssignment{
		{ProjectID: 2, Role: domain.RoleProjectCoordinator},
	}

	t.Run("coordinator sees only assigned projects", func(t *testing.T) {
		got := DeriveVisibleProjects(all, domain.RoleProjectCoordinator, assignments)
		require.Len(t, got, 1)
		require.Equal(t, int64(2), got[0].ProjectID)
	})

	t.Run("admin sees every project", func(t *testing.T) {
		got := DeriveVisibleProjects(all, domain.RoleAdmin, nil)
		require.Equal(t, all, got)
	})

	t.Run("observer sees the unfiltered list", func(t *testing.T) {
		got := DeriveVisibleProjects(all, domain.RoleObserver, assignments)
		require.Equal(t, all, got)
	})
}
