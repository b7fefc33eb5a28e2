package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simpletodos/internal/client"
	"simpletodos/internal/ui"
	"simpletodos/pkg/config"
)

func main() {
	addr := flag.String("addr", config.GetEnv("TODO_ADDR", "http://localhost:8080"), "server base URL")
	email := flag.String("email", os.Getenv("TODO_EMAIL"), "sign in with this email")
	password := flag.String("password", os.Getenv("TODO_PASSWORD"), "password for -email")
	register := flag.Bool("register", false, "create the account before signing in")
	once := flag.Bool("once", false, "print the list once and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, *email, *password, *register, *once); err != nil {
		fmt.Fprintln(os.Stderr, "todo:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, email, password string, register, once bool) error {
	c := client.New(addr)

	if email != "" {
		authCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if register {
			if err := c.Register(authCtx, email, password); err != nil {
				return fmt.Errorf("register: %w", err)
			}
		}
		if err := c.Login(authCtx, email, password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	if once || !ui.IsTTY(os.Stdout) {
		out, err := ui.PrintOnce(ctx, c)
		fmt.Print(out)
		return err
	}
	return ui.Run(ctx, c)
}
