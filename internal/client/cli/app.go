package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/phoneshop/posclient/internal/client/client"
	"github.com/phoneshop/posclient/internal/client/config"
	"github.com/phoneshop/posclient/internal/client/repositories/credentials"
	"github.com/phoneshop/posclient/internal/client/session"
	"github.com/phoneshop/posclient/internal/filex"
	"github.com/phoneshop/posclient/internal/logging"
)

const databaseFile = "session.db"

type App struct {
	config *config.Config
	api    client.Client
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer

	// signingOut is set while the user's own logout runs, so the session
	// watcher can tell it apart from a session the backend ended.
	signingOut  atomic.Bool
	unsubscribe func()
	closeFn     func() error
}

// NewApp opens the local session database, resumes any persisted session and
// builds the API client for the configured backend.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	dir, err := filex.EnsureDataDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, databaseFile))
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := session.NewStore(credentials.NewSQLiteStorage(db), log)
	if snap := store.Hydrate(ctx); snap.IsAuthenticated() {
		log.Info(ctx, "resumed session", "user_id", snap.User.ID)
	}

	api, err := client.New(c.BaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithRefreshTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(api, bufio.NewReader(os.Stdin), os.Stdout, log)
	a.config = c
	a.closeFn = db.Close
	return a, nil
}

func newApp(api client.Client, r *bufio.Reader, w io.Writer, log logging.Logger) *App {
	a := &App{api: api, log: log, reader: r, out: w}
	a.watchSession()
	return a
}

// watchSession tells the user when the session ends without them asking,
// which happens when a token refresh fails.
func (a *App) watchSession() {
	authenticated := a.api.Session().IsAuthenticated()
	a.unsubscribe = a.api.Session().Subscribe(func(s session.Snapshot) {
		was := authenticated
		authenticated = s.IsAuthenticated()
		if was && !authenticated && !a.signingOut.Load() {
			fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
		}
	})
}

func (a *App) isLoggedIn() bool {
	return a.api.Session().IsAuthenticated()
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Phone POS client (type 'help' for commands)")
	if a.config != nil {
		fmt.Fprintf(a.out, "Backend: %s\n", a.config.BaseURL)
	}
	if a.isLoggedIn() {
		// Re-validate the resumed session; a dead one ends here.
		if err := a.WhoAmI(ctx); err != nil {
			a.log.Warn(ctx, "resumed session could not be confirmed", "error", err)
		}
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.closeFn != nil {
		return a.closeFn()
	}
	return nil
}

func (a *App) getStatus() string {
	u := a.api.Session().User()
	if u == nil {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s %s)", u.DisplayName, u.Role)
}
