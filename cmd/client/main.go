package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/atinyakov/GophReport/internal/client"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop for the logged-in user.
func repl(ctx context.Context, c *client.Client, email string, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "gophreport> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(out, "Available commands: help, me, list [mine], add, delete <id>, exit")
		case "me":
			p, err := c.Me(ctx)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintf(out, "%s (%s)\n", p.Email, p.Role)
		case "list":
			owner := ""
			if len(args) > 1 && args[1] == "mine" {
				owner = email
			}
			complaints, err := c.ListComplaints(ctx, owner)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			if len(complaints) == 0 {
				fmt.Fprintln(out, "No complaints")
			}
			for _, cm := range complaints {
				fmt.Fprintf(out, "#%d [%s] %s by %s at (%.5f, %.5f)\n",
					cm.ID, cm.Status, cm.Title, cm.OwnerEmail, cm.Latitude, cm.Longitude)
			}
		case "add":
			// Answers are read from the same scanner so buffered input is not lost.
			input, err := client.PromptForComplaint(&lineReader{scanner: scanner}, out)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			created, err := c.CreateComplaint(ctx, input)
			if err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintf(out, "Complaint #%d filed\n", created.ID)
		case "delete":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: delete <id>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Fprintln(out, "Usage: delete <id>")
				continue
			}
			if err := c.DeleteComplaint(ctx, id); err != nil {
				fmt.Fprintln(out, "Error:", err)
				continue
			}
			fmt.Fprintln(out, "Complaint deleted")
		case "exit":
			fmt.Fprintln(out, "Bye")
			return
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// lineReader feeds the lines of an existing scanner to another reader.
type lineReader struct {
	scanner *bufio.Scanner
	buf     []byte
}

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		r.buf = append([]byte(r.scanner.Text()), '\n')
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// main parses command-line flags and dispatches to the register, login or shell commands.
func main() {
	var (
		cmd      string
		baseURL  string
		caFile   string
		session  string
		email    string
		name     string
		password string
		showVer  bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: register | login | shell")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for a dev TLS server")
	flag.StringVar(&session, "session", ".gophreport-session", "path to the session file")
	flag.StringVar(&email, "email", "", "account email")
	flag.StringVar(&name, "name", "", "display name for registration")
	flag.StringVar(&password, "password", "", "account password")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()
	// The server stores emails lowercase; the session keeps the same form.
	email = strings.ToLower(strings.TrimSpace(email))

	if showVer {
		fmt.Printf("GophReport Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	hc, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	c := client.New(baseURL, hc)
	ctx := context.Background()

	switch cmd {
	case "register":
		if email == "" || password == "" {
			log.Fatal("please provide -email and -password")
		}
		if err := c.Register(ctx, email, name, password); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Registration successful. Run -cmd login next.")
	case "login":
		if email == "" || password == "" {
			log.Fatal("please provide -email and -password")
		}
		tok, err := c.Login(ctx, email, password)
		if err != nil {
			log.Fatal(err)
		}
		if err := (client.Session{Email: email, Token: tok}).Save(session); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Login successful. Token saved to", session)
	case "shell":
		s, err := client.LoadSession(session)
		if err != nil && !errors.Is(err, client.ErrNoSession) {
			log.Fatal(err)
		}
		c.SetToken(s.Token)
		repl(ctx, c, s.Email, os.Stdin, os.Stdout)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
