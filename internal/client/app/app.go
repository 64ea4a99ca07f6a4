package app

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/infosharesystems/vres-client/internal/client/domain"
	"github.com/infosharesystems/vres-client/internal/client/redeem"
	"github.com/infosharesystems/vres-client/internal/client/session"
	"github.com/infosharesystems/vres-client/internal/client/store"
	"github.com/infosharesystems/vres-client/internal/client/store/drivers/sqlite"
	"github.com/infosharesystems/vres-client/pkg/cryptox"
	"github.com/infosharesystems/vres-client/pkg/slogx"
	"github.com/infosharesystems/vres-client/pkg/vressdk"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the VRES client together: SDK client, durable state
// store, session controller, and redemption sequencer, dispatched behind a
// small set of subcommands.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	client    *vressdk.Client
	sessions  *session.Controller
	sequencer *redeem.Sequencer

	out *os.File
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			App:     "vres-client",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		out: os.Stdout,
	}

	// Key used to seal the persisted identity at rest.
	cryptox.SetSecretPath(cfg.SecretFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.client = vressdk.NewClient(cfg.BaseURL)
	app.client.HTTPClient.Timeout = cfg.HTTPTimeout
	app.sessions = session.NewController(app.client, app.db, app.logger)
	app.sequencer = redeem.NewSequencer(app.client, app.db, app.logger)

	return app, nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize state database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply state migrations: %w", err)
	}

	return nil
}

// Close releases the state database.
func (app *Application) Close() error {
	return app.db.Close()
}

// Run dispatches one subcommand and returns when it completes.
func (app *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		app.usage()
		return fmt.Errorf("no command given")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return app.cmdLogin(ctx, rest)
	case "select-project":
		return app.cmdSelectProject(ctx, rest)
	case "status":
		return app.cmdStatus(ctx)
	case "logout":
		return app.cmdLogout(ctx)
	case "projects":
		return app.cmdProjects(ctx)
	case "dashboard":
		return app.cmdDashboard(ctx, rest)
	case "redeem":
		return app.cmdRedeem(ctx, rest)
	case "confirm":
		return app.cmdConfirm(ctx, rest)
	case "history":
		return app.cmdHistory(ctx)
	default:
		app.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (app *Application) usage() {
	fmt.Fprintln(app.out, `usage: vres <command> [flags]

Console commands:
  login           -user U -password P    authenticate against the backend
  select-project  -id N                  activate a project assignment
  status                                 show session state and navigation
  projects                               list projects visible to this role
  dashboard       [-project N]           show a project dashboard
  logout                                 clear the session

Vendor commands:
  redeem   -user U -password P -code C   start a voucher redemption
  confirm  -user U -password P -otp O [-lat L -lon L]
                                         complete a pending redemption
  history                                list past redemption attempts`)
}

// ============================================================================
// Console commands
// ============================================================================

func (app *Application) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", "", "user id")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" || *password == "" {
		return fmt.Errorf("login: -user and -password are required")
	}

	res, err := app.sessions.Login(ctx, *user, *password)
	if err != nil {
		return err
	}

	if res.Notice != "" {
		fmt.Fprintln(app.out, res.Notice)
	}
	app.printResult(res)
	return nil
}

func (app *Application) cmdSelectProject(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("select-project", flag.ContinueOnError)
	id := fs.Int64("id", 0, "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("select-project: -id is required")
	}

	if _, err := app.sessions.Bootstrap(ctx); err != nil {
		return err
	}

	res, err := app.sessions.SelectProject(ctx, *id)
	if err != nil {
		return err
	}

	if res.Notice != "" {
		fmt.Fprintln(app.out, res.Notice)
	}
	app.printResult(res)
	return nil
}

func (app *Application) cmdStatus(ctx context.Context) error {
	res, err := app.sessions.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if res.Notice != "" {
		fmt.Fprintln(app.out, res.Notice)
	}

	app.printResult(res)
	if res.State == session.LoggedOut {
		return nil
	}

	id := app.sessions.Identity()
	as := app.sessions.ActiveSession()
	fmt.Fprintf(app.out, "user:  %s (%s)\n", id.Name, id.UserID)
	if as.Role != "" {
		fmt.Fprintf(app.out, "role:  %s\n", as.Role)
	}
	if as.HasProject() {
		fmt.Fprintf(app.out, "project: %d\n", as.SelectedProjectID)
	}
	if as.DepartmentID != 0 {
		fmt.Fprintf(app.out, "department: %d\n", as.DepartmentID)
	}
	if len(as.Nav) > 0 {
		fmt.Fprintf(app.out, "nav:   %v\n", as.Nav)
	}
	return nil
}

func (app *Application) cmdLogout(ctx context.Context) error {
	if err := app.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "logged out")
	return nil
}

func (app *Application) cmdProjects(ctx context.Context) error {
	if _, err := app.sessions.Bootstrap(ctx); err != nil {
		return err
	}

	sdk, err := app.sessions.Session()
	if err != nil {
		return err
	}
	all, err := sdk.Projects(ctx)
	if err != nil {
		return err
	}

	id := app.sessions.Identity()
	visible := session.DeriveVisibleProjects(all, id.Role, id.Projects)

	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
	for _, p := range visible {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ProjectID, p.ProjectName, p.Status)
	}
	return tw.Flush()
}

func (app *Application) cmdDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	project := fs.Int64("project", 0, "project id (default: active project)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := app.sessions.Bootstrap(ctx); err != nil {
		return err
	}

	id := *project
	if id == 0 {
		id = app.sessions.ActiveSession().SelectedProjectID
	}
	if id == 0 {
		return fmt.Errorf("dashboard: no project selected, pass -project")
	}

	sdk, err := app.sessions.Session()
	if err != nil {
		return err
	}
	d, err := sdk.Dashboard(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "project %d\n", id)
	fmt.Fprintf(app.out, "beneficiaries: %d\n", d.TotalBeneficiaries)
	fmt.Fprintf(app.out, "vouchers issued: %d redeemed: %d outstanding: %d\n",
		d.VouchersIssued, d.VouchersRedeemed, d.VouchersOutstanding)
	return nil
}

// ============================================================================
// Vendor commands
// ============================================================================

// staticSource feeds a code given on the command line into the sequencer.
type staticSource struct {
	code string
}

func (s staticSource) Acquire(ctx context.Context) (string, error) { return s.code, nil }
func (s staticSource) Release() error                              { return nil }

func (app *Application) cmdRedeem(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("redeem", flag.ContinueOnError)
	user := fs.String("user", "", "vendor user id")
	password := fs.String("password", "", "vendor password")
	code := fs.String("code", "", "voucher code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" || *password == "" || *code == "" {
		return fmt.Errorf("redeem: -user, -password and -code are required")
	}

	if err := app.sequencer.VendorLogin(ctx, *user, *password); err != nil {
		return err
	}
	if err := app.sequencer.AcquireCode(ctx, staticSource{code: *code}, domain.AcquireManual); err != nil {
		return err
	}

	msg, err := app.sequencer.Initiate(ctx)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "OTP sent to beneficiary"
	}
	fmt.Fprintln(app.out, msg)
	fmt.Fprintln(app.out, "run `vres confirm -otp <code>` to complete the redemption")
	return nil
}

func (app *Application) cmdConfirm(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ContinueOnError)
	user := fs.String("user", "", "vendor user id")
	password := fs.String("password", "", "vendor password")
	otp := fs.String("otp", "", "6-digit OTP")
	lat := fs.Float64("lat", 0, "device latitude")
	lon := fs.Float64("lon", 0, "device longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" || *password == "" || *otp == "" {
		return fmt.Errorf("confirm: -user, -password and -otp are required")
	}

	if err := app.sequencer.VendorLogin(ctx, *user, *password); err != nil {
		return err
	}

	code, err := app.sequencer.Recover(ctx)
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("confirm: no pending redemption to confirm")
	}

	if err := app.sequencer.Confirm(ctx, *otp, domain.Geo{Lat: *lat, Lon: *lon}); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "voucher %s redeemed\n", code)
	return nil
}

func (app *Application) cmdHistory(ctx context.Context) error {
	records, err := app.sequencer.History(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(app.out, "no redemptions yet")
		return nil
	}

	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCODE\tMETHOD\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Code, r.Method, r.Status)
	}
	return tw.Flush()
}

func (app *Application) printResult(res session.Result) {
	fmt.Fprintf(app.out, "state: %s\n", res.State)
	if res.Route != "" {
		fmt.Fprintf(app.out, "route: %s\n", res.Route)
	}
}
