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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Import(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Collections(ctx context.Context, args []string) error
	Notifications(ctx context.Context, args []string) error
	Profile(ctx context.Context) error
	Password(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Minbar CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - list           — list entries (list [all|hadith|ayat] [page] [query...])
//	  - show           — show a single entry (interactive ID prompt)
//	  - add            — add an entry interactively
//	  - edit           — edit an entry interactively
//	  - delete         — delete an entry
//	  - import         — import entries from a JSON or CSV file
//	  - export         — export data (export [xlsx|pdf] [all|hadith|ayat|collections])
//	  - collections    — manage collections (list, show, create, rename, delete, add, remove)
//	  - notifications  — view the feed (list, read, readall, clear)
//	  - profile        — change display name
//	  - password       — change password (signs out afterwards)
//	  - refresh        — re-fetch the entry list from the backend
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("minbar> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, show, add, edit, delete, import, export, collections, notifications, profile, password, refresh, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "l", "list":
			_ = a.List(ctx, args)

		case "show":
			_ = a.Show(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			_ = a.Edit(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "import":
			_ = a.Import(ctx)

		case "export":
			_ = a.Export(ctx, args)

		case "collections":
			_ = a.Collections(ctx, args)

		case "notifications":
			_ = a.Notifications(ctx, args)

		case "profile":
			_ = a.Profile(ctx)

		case "password":
			_ = a.Password(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
