package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Get(ctx context.Context, path string) error
	Post(ctx context.Context, path string) error
}

// runREPL reads commands from scanner and dispatches them to a until input
// ends or the user types "exit" or "quit".
//
//	Not logged in:
//	  - help          : show available commands
//	  - login         : sign in
//	  - status        : show the local session state
//	  - exit | quit   : leave the program
//
//	Logged in:
//	  - help          : show available commands
//	  - whoami        : re-validate the session and show the profile
//	  - status        : show the local session state
//	  - get <path>    : authenticated GET, e.g. get /api/products
//	  - post <path>   : authenticated POST with a JSON body
//	  - logout        : sign out
//	  - exit | quit   : leave the program
//
// Errors returned by handlers are ignored here; handlers report their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pos %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, status, get <path>, post <path>, logout, exit")
			} else {
				printlnFn("Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "status":
			_ = a.Status(ctx)

		case "get", "post":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <path>", cmd))
				continue
			}
			if cmd == "get" {
				_ = a.Get(ctx, args[0])
			} else {
				_ = a.Post(ctx, args[0])
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
