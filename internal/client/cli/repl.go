package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/dokanload/internal/client/client"
	"github.com/dmitrijs2005/dokanload/internal/client/services"
)

type command struct {
	names     []string
	usage     string
	protected bool
	run       func(ctx context.Context, args []string) error
}

// errUsage makes the REPL print the command's usage line.
var errUsage = errors.New("usage")

// runREPL reads one command per line and dispatches it. Protected commands
// are refused while the session has no user. Errors returned by commands
// are shown to the user and never end the loop; only "exit", "quit" or the
// end of input do.
func runREPL(ctx context.Context, cmds []command, session services.Session, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	index := map[string]command{}
	for _, c := range cmds {
		for _, n := range c.names {
			index[n] = c
		}
	}

	for {
		fmt.Fprintf(out, "dokan (%s)> ", statusFn())
		line, readErr := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if readErr != nil {
				fmt.Fprintln(out)
				return
			}
			continue
		}
		name, args := strings.ToLower(parts[0]), parts[1:]

		switch name {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		case "help":
			printHelp(out, cmds, session.IsAuthenticated())
			continue
		}

		c, ok := index[name]
		if !ok {
			fmt.Fprintln(out, "Unknown command:", name)
			continue
		}
		if c.protected {
			if _, err := session.RequireUser(); err != nil {
				fmt.Fprintln(out, "Please log in first (login or register).")
				continue
			}
		}

		if err := c.run(ctx, args); err != nil {
			if errors.Is(err, errUsage) {
				fmt.Fprintln(out, "Usage:", c.usage)
			} else {
				fmt.Fprintln(out, "Error:", describe(err))
			}
		}

		if readErr != nil {
			return
		}
	}
}

func printHelp(out io.Writer, cmds []command, loggedIn bool) {
	fmt.Fprintln(out, "Available commands:")
	for _, c := range cmds {
		if c.protected && !loggedIn {
			continue
		}
		fmt.Fprintf(out, "  %s\n", c.usage)
	}
	if !loggedIn {
		fmt.Fprintln(out, "  (log in for profile, purchase, download and upload)")
	}
	fmt.Fprintln(out, "  exit")
}

// describe turns an error into a one-line notification.
func describe(err error) string {
	var vErr *client.ValidationError
	var partial *services.PartialRegistrationError
	switch {
	case errors.As(err, &partial):
		return fmt.Sprintf("your account was created, but logging in failed (%s). Try 'login'.", describe(partial.Err))
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.Is(err, services.ErrNotLoggedIn):
		return "you are not logged in"
	case errors.Is(err, client.ErrInvalidCredentials):
		return client.Message(err)
	case errors.Is(err, client.ErrUnauthorized):
		return "your session has ended, please log in again"
	case errors.Is(err, client.ErrNotFound):
		return "not found"
	case errors.Is(err, client.ErrNetwork):
		return "the store cannot be reached right now"
	default:
		return client.Message(err)
	}
}
