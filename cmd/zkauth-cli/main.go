// Command zkauth-cli registers a user with a zkauth verifier and logs in by
// proving knowledge of the password-derived secret.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/layer-3/zkauth/prover"
	"golang.org/x/term"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:41337", "verifier base URL")
	user := flag.String("user", "", "username (prompted when empty)")
	skipRegister := flag.Bool("login-only", false, "skip registration and only log in")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	if err := run(*server, *user, *skipRegister, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(server, user string, skipRegister bool, timeout time.Duration) error {
	in := bufio.NewReader(os.Stdin)

	if user == "" {
		fmt.Print("Username: ")
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read username: %w", err)
		}
		user = strings.TrimSpace(line)
	}
	if user == "" {
		return errors.New("username must not be empty")
	}

	password, err := readPassword(in)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := prover.NewClient(server)
	params, err := client.FetchParams(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch group parameters: %w", err)
	}
	client.Params = params

	if !skipRegister {
		if err := client.Register(ctx, user, password); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		fmt.Println("Registered", user)
	}

	session, err := client.Login(ctx, user, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("Logged in. Session ID:", session.SessionID)
	fmt.Println("Access token:", session.AccessToken)
	return nil
}

// readPassword hides input on a terminal and falls back to a plain line read
// when stdin is piped.
func readPassword(in *bufio.Reader) (string, error) {
	fmt.Print("Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
