package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/infosharesystems/vres-client/internal/client/domain"
	"github.com/infosharesystems/vres-client/internal/client/nav"
	"github.com/infosharesystems/vres-client/internal/client/store"
	"github.com/infosharesystems/vres-client/pkg/jwtx"
	"github.com/infosharesystems/vres-client/pkg/vressdk"
)

// State is the console session state.
type State int

const (
	LoggedOut State = iota
	AwaitingProjectSelection
	Active
)

func (s State) String() string {
	switch s {
	case AwaitingProjectSelection:
		return "awaiting-project-selection"
	case Active:
		return "active"
	default:
		return "logged-out"
	}
}

var (
	// ErrBusy means another operation is still in flight. The caller's UI
	// must keep the triggering control disabled; a second submission must
	// not produce a second request.
	ErrBusy = errors.New("session: operation already in flight")

	// ErrNotAuthenticated is returned for operations that need a session.
	ErrNotAuthenticated = errors.New("session: not logged in")

	// ErrUnknownAssignment means the chosen project is not in the user's
	// assignment list (stale list); no state changes.
	ErrUnknownAssignment = errors.New("session: project not in assignment list")
)

// LoginRoute is where logged-out users go.
const LoginRoute = "/login"

// SelectProjectRoute is where authenticated users without a selected
// project go.
const SelectProjectRoute = "/select-project"

// Result reports where a completed transition landed and any informational
// notice to show the user.
type Result struct {
	State  State
	Route  string
	Notice string
}

// Controller drives the console session:
//
//	LoggedOut -> AwaitingProjectSelection -> Active -> LoggedOut
//
// Admins and users without project assignments skip project selection and
// go straight to Active. All state that must survive a restart goes through
// the injected store; the controller never touches it behind the store's
// back.
type Controller struct {
	client *vressdk.Client
	store  store.Store
	logger *slog.Logger
	now    func() time.Time

	// gate serializes operations: one in-flight user action at a time.
	gate chan struct{}

	mu       sync.RWMutex
	state    State
	identity domain.Identity
	active   domain.ActiveSession
}

func NewController(client *vressdk.Client, st store.Store, logger *slog.Logger) *Controller {
	c := &Controller{
		client: client,
		store:  st,
		logger: logger,
		now:    time.Now,
		gate:   make(chan struct{}, 1),
	}
	c.gate <- struct{}{}
	return c
}

// begin claims the in-flight slot or fails with ErrBusy.
func (c *Controller) begin() (func(), error) {
	select {
	case <-c.gate:
		return func() { c.gate <- struct{}{} }, nil
	default:
		return nil, ErrBusy
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Identity returns the authenticated identity. Zero value when logged out.
func (c *Controller) Identity() domain.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// ActiveSession returns the current active session view.
func (c *Controller) ActiveSession() domain.ActiveSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Session returns an authenticated SDK session for backend calls.
func (c *Controller) Session() (*vressdk.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == LoggedOut || c.identity.Token == "" {
		return nil, ErrNotAuthenticated
	}
	return c.client.WithToken(c.identity.Token), nil
}

// Login authenticates and enters the session state machine.
//
// Unrecognized roles are a configuration error and leave nothing behind:
// the token is discarded, no state is persisted, and the controller stays
// LoggedOut. Backend and transport failures also leave the state untouched.
func (c *Controller) Login(ctx context.Context, userID, password string) (Result, error) {
	done, err := c.begin()
	if err != nil {
		return Result{}, err
	}
	defer done()

	resp, err := c.client.Login(ctx, userID, password)
	if err != nil {
		return Result{State: LoggedOut, Route: LoginRoute}, err
	}

	role := domain.Role(resp.Role)
	entry, err := nav.Resolve(role)
	if err != nil {
		// Fail closed before anything is persisted.
		return Result{State: LoggedOut, Route: LoginRoute},
			fmt.Errorf("login failed: no navigation configuration for role %q: %w", resp.Role, err)
	}

	identity := domain.Identity{
		UserID: resp.UserID,
		Name:   resp.Name,
		Token:  resp.JWTToken,
		Role:   role,
	}
	for _, p := range resp.Projects {
		identity.Projects = append(identity.Projects, domain.ProjectAssignment{
			ProjectID:    p.ProjectID,
			ProjectName:  p.ProjectName,
			Role:         domain.Role(p.Role),
			DepartmentID: p.DepartmentID,
		})
	}

	switch {
	case role == domain.RoleAdmin:
		// Admins never select a project.
		return c.enterActive(ctx, identity, domain.ActiveSession{
			Role:         role,
			Nav:          entry.Routes,
			DefaultRoute: entry.DefaultRoute,
		}, fmt.Sprintf("Welcome %s!", identity.Name))

	case len(identity.Projects) == 0:
		// Degenerate Active: authenticated, no project to work in.
		return c.enterActive(ctx, identity, domain.ActiveSession{
			Role:         role,
			Nav:          entry.Routes,
			DefaultRoute: entry.DefaultRoute,
		}, "You have no projects assigned yet.")

	default:
		if err := c.store.Sessions().Put(ctx, identity, domain.ActiveSession{}); err != nil {
			return Result{State: LoggedOut, Route: LoginRoute},
				fmt.Errorf("persist session: %w", err)
		}

		c.mu.Lock()
		c.identity = identity
		c.active = domain.ActiveSession{}
		c.state = AwaitingProjectSelection
		c.mu.Unlock()

		c.logger.Info("login ok, awaiting project selection",
			"user", identity.UserID, "projects", len(identity.Projects))
		return Result{
			State:  AwaitingProjectSelection,
			Route:  SelectProjectRoute,
			Notice: fmt.Sprintf("Welcome %s!", identity.Name),
		}, nil
	}
}

func (c *Controller) enterActive(ctx context.Context, identity domain.Identity, active domain.ActiveSession, notice string) (Result, error) {
	if err := c.store.Sessions().Put(ctx, identity, active); err != nil {
		return Result{State: LoggedOut, Route: LoginRoute}, fmt.Errorf("persist session: %w", err)
	}

	c.mu.Lock()
	c.identity = identity
	c.active = active
	c.state = Active
	c.mu.Unlock()

	c.logger.Info("session active",
		"user", identity.UserID, "role", string(active.Role), "project", active.SelectedProjectID)
	return Result{State: Active, Route: active.DefaultRoute, Notice: notice}, nil
}

// SelectProject activates the given project assignment. Valid from
// AwaitingProjectSelection, and from Active to switch projects. A project
// missing from the assignment list or a role without a navigation entry
// aborts with no state change.
func (c *Controller) SelectProject(ctx context.Context, projectID int64) (Result, error) {
	done, err := c.begin()
	if err != nil {
		return Result{}, err
	}
	defer done()

	c.mu.RLock()
	state := c.state
	identity := c.identity
	c.mu.RUnlock()

	if state == LoggedOut {
		return Result{State: LoggedOut, Route: LoginRoute}, ErrNotAuthenticated
	}

	assignment, ok := identity.Assignment(projectID)
	if !ok {
		return Result{State: state},
			fmt.Errorf("select project %d: %w", projectID, ErrUnknownAssignment)
	}

	entry, err := nav.Resolve(assignment.Role)
	if err != nil {
		return Result{State: state},
			fmt.Errorf("select project %d: no navigation configuration for role %q: %w",
				projectID, assignment.Role, err)
	}

	active := domain.ActiveSession{
		Role:              assignment.Role,
		SelectedProjectID: assignment.ProjectID,
		Nav:               entry.Routes,
		DefaultRoute:      entry.DefaultRoute,
	}
	if assignment.Role.NeedsDepartment() {
		active.DepartmentID = assignment.DepartmentID
	}

	return c.enterActive(ctx, identity, active,
		fmt.Sprintf("Switched to project: %s", assignment.ProjectName))
}

// RouteGuard resolves a navigation request. It returns the path the user
// actually lands on and whether the requested path was admitted as-is.
func (c *Controller) RouteGuard(requestedPath string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.state {
	case LoggedOut:
		return LoginRoute, requestedPath == LoginRoute

	case AwaitingProjectSelection:
		return SelectProjectRoute, requestedPath == SelectProjectRoute

	default:
		// Non-admins with assignments must have a project selected.
		if !c.active.HasProject() && c.active.Role != domain.RoleAdmin && len(c.identity.Projects) > 0 {
			return SelectProjectRoute, requestedPath == SelectProjectRoute
		}
		if c.active.Allows(nav.RouteKey(requestedPath)) {
			return requestedPath, true
		}
		return c.active.DefaultRoute, false
	}
}

// Logout clears every persisted session key and all in-memory state.
func (c *Controller) Logout(ctx context.Context) error {
	done, err := c.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := c.store.Sessions().Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	c.mu.Lock()
	c.identity = domain.Identity{}
	c.active = domain.ActiveSession{}
	c.state = LoggedOut
	c.mu.Unlock()

	c.logger.Info("logged out")
	return nil
}

// Bootstrap restores the session from the store without re-authenticating.
// Absent, corrupt, or expired persisted state lands in LoggedOut; a session
// without a selected project resumes at project selection.
func (c *Controller) Bootstrap(ctx context.Context) (Result, error) {
	done, err := c.begin()
	if err != nil {
		return Result{}, err
	}
	defer done()

	identity, active, err := c.store.Sessions().Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{State: LoggedOut, Route: LoginRoute}, nil
		}
		return Result{State: LoggedOut, Route: LoginRoute}, fmt.Errorf("read session: %w", err)
	}

	if jwtx.Expired(identity.Token, c.now()) {
		_ = c.store.Sessions().Clear(ctx)
		c.logger.Info("persisted token expired, session cleared", "user", identity.UserID)
		return Result{State: LoggedOut, Route: LoginRoute, Notice: "Session expired. Please log in again."}, nil
	}

	// Admins never carry a selected project, whatever was persisted.
	if identity.Role == domain.RoleAdmin {
		active.SelectedProjectID = 0
		active.DepartmentID = 0
	}

	role := active.Role
	if role == "" {
		// Never activated a project. Resume selection if there is
		// anything to select; otherwise it is a degenerate active
		// session under the top-level role.
		if len(identity.Projects) > 0 {
			c.mu.Lock()
			c.identity = identity
			c.active = domain.ActiveSession{}
			c.state = AwaitingProjectSelection
			c.mu.Unlock()
			return Result{State: AwaitingProjectSelection, Route: SelectProjectRoute}, nil
		}
		role = identity.Role
	}

	// Recompute nav from the table rather than trusting the persisted
	// copy; the invariant is nav == table[role].nav.
	entry, err := nav.Resolve(role)
	if err != nil {
		_ = c.store.Sessions().Clear(ctx)
		return Result{State: LoggedOut, Route: LoginRoute},
			fmt.Errorf("bootstrap: no navigation configuration for role %q: %w", role, err)
	}
	active.Role = role
	active.Nav = entry.Routes
	active.DefaultRoute = entry.DefaultRoute

	c.mu.Lock()
	c.identity = identity
	c.active = active
	c.state = Active
	c.mu.Unlock()

	c.logger.Info("session restored", "user", identity.UserID, "role", string(role))
	return Result{State: Active, Route: active.DefaultRoute}, nil
}
