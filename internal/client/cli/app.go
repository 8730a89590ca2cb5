package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/printfleet/internal/client/client"
	"github.com/dmitrijs2005/printfleet/internal/client/config"
)

// fleetService is what the console needs from the gRPC client.
type fleetService interface {
	Login(ctx context.Context, userName string, password []byte) (*client.Session, error)
	Logout()
	LoggedIn() bool
	ListPrinters(ctx context.Context) ([]client.Printer, error)
	ListFirmware(ctx context.Context) ([]client.Firmware, error)
	Deploy(ctx context.Context, id string) (*client.Firmware, error)
	Cancel(ctx context.Context, id string) (*client.Firmware, error)
	HistoryStats(ctx context.Context) (*client.HistoryStats, error)
	Close() error
}

type App struct {
	config  *config.Config
	api     fleetService
	session *client.Session
	out     io.Writer
	in      io.Reader
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.NewFleetClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: api, out: os.Stdout, in: os.Stdin}, nil
}

// Run starts the REPL and closes the connection when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	fmt.Fprintf(a.out, "printfleet console, server %s (type 'help' for commands)\n", a.config.ServerEndpointAddr)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.in))
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.api.LoggedIn()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "(offline)"
	}
	return fmt.Sprintf("(%s %s)", a.session.Username, a.session.Role)
}

// call bounds a single request by the configured timeout.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
