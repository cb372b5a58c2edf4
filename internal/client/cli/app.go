package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/dokanload/internal/client/cart"
	"github.com/dmitrijs2005/dokanload/internal/client/client"
	"github.com/dmitrijs2005/dokanload/internal/client/config"
	"github.com/dmitrijs2005/dokanload/internal/client/credentials"
	"github.com/dmitrijs2005/dokanload/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dokanload/internal/client/services"
	"github.com/dmitrijs2005/dokanload/internal/logging"
)

const downloadDir = "downloads"

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session *services.SessionManager
	assets  *services.AssetQuery
	catalog *services.Catalog
	cart    *cart.Store
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local database and builds the client stack. The saved
// session, if any, is restored; a saved session that is no longer valid is
// dropped with a notice rather than failing startup.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	creds := credentials.NewStore(metadata.NewSQLiteRepository(db))
	gw := client.NewGateway(client.GatewayConfig{
		BaseURL:         cfg.APIBaseURL,
		MetadataTimeout: cfg.MetadataTimeout,
		TransferTimeout: cfg.TransferTimeout,
	}, creds, log)
	api := client.NewHTTPClient(gw)

	session := services.NewSessionManager(api, creds, log, cfg.ProfileSource)
	gw.SetInvalidator(session)

	store := cart.New()
	if cfg.PersistCart {
		if err := cart.Attach(ctx, store, cart.NewSQLitePersister(db), log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	a := &App{
		config:  cfg,
		log:     log,
		db:      db,
		session: session,
		assets:  services.NewAssetQuery(api, log, cfg.PageSize),
		catalog: services.NewCatalog(api, session, log),
		cart:    store,
		reader:  bufio.NewReader(in),
		out:     out,
	}

	if err := session.Init(ctx); err != nil {
		if ctx.Err() != nil {
			_ = db.Close()
			return nil, err
		}
		log.Warn(ctx, "saved session dropped", "error", err)
		a.println("Your saved session has expired, please log in again.")
	}
	return a, nil
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to Dokan Load (type 'help' for commands)")
	runREPL(ctx, a.commands(), a.session, a.status, a.reader, a.out)
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) status() string {
	s := "guest"
	if u, ok := a.session.User(); ok {
		s = u.Username
		if s == "" {
			s = u.Email
		}
	}
	if n := a.cart.Count(); n > 0 {
		s = fmt.Sprintf("%s, cart:%d", s, n)
	}
	return s
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
