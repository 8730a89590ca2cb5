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
	Login(ctx context.Context, userName string) error
	Logout(ctx context.Context) error
	Printers(ctx context.Context) error
	Firmware(ctx context.Context) error
	Deploy(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Stats(ctx context.Context) error
}

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit". The prompt shows statusFn().
//
//	Not logged in:
//	  - help                 show available commands
//	  - login <username>     authenticate (password is read without echo)
//	  - exit | quit          leave the program
//
//	Logged in:
//	  - printers | p         list printers
//	  - firmware | fw        list firmware catalog
//	  - deploy <id>          start deploying a pending firmware
//	  - cancel <id>          cancel a running deployment
//	  - stats                deployment history statistics
//	  - logout
//
// Handlers report their own errors, so they are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fleet %s > ", statusFn()))
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
				printlnFn("Available commands: (p)rinters, firmware (fw), deploy <id>, cancel <id>, stats, logout, exit")
			} else {
				printlnFn("Available commands: login <username>, exit")
			}

		case "login":
			if len(args) != 1 {
				printlnFn("Usage: login <username>")
				continue
			}
			_ = a.Login(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if !a.isLoggedIn() {
				if isKnown(cmd) {
					printlnFn("Please log in first")
				} else {
					printlnFn("Unknown command:", cmd)
				}
				continue
			}
			dispatch(ctx, a, cmd, args)
		}
	}
}

func isKnown(cmd string) bool {
	switch cmd {
	case "p", "printers", "fw", "firmware", "deploy", "cancel", "stats", "logout":
		return true
	}
	return false
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "p", "printers":
		_ = a.Printers(ctx)

	case "fw", "firmware":
		_ = a.Firmware(ctx)

	case "deploy", "cancel":
		if len(args) != 1 {
			printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
			return
		}
		if cmd == "deploy" {
			_ = a.Deploy(ctx, args[0])
		} else {
			_ = a.Cancel(ctx, args[0])
		}

	case "stats":
		_ = a.Stats(ctx)

	case "logout":
		_ = a.Logout(ctx)

	default:
		printlnFn("Unknown command:", cmd)
	}
}
