// authctl is a small operator CLI for a running account server. It drives the
// public HTTP API: create an account or check credentials from the terminal.
//
// Usage:
//
//	authctl [-s http://localhost:8080] register
//	authctl [-s http://localhost:8080] login
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	serverURL := flag.String("s", "http://localhost:8080", "account server base URL")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: authctl [-s url] register|login")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	reader := bufio.NewReader(os.Stdin)

	var err error
	switch flag.Arg(0) {
	case "register":
		err = register(client, *serverURL, reader)
	case "login":
		err = login(client, *serverURL, reader)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func register(client *http.Client, serverURL string, reader *bufio.Reader) error {
	name, err := prompt(reader, "Enter name")
	if err != nil {
		return err
	}

	email, err := prompt(reader, "Enter email")
	if err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	msg, err := post(client, serverURL+"/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	fmt.Println(msg)
	return nil
}

func login(client *http.Client, serverURL string, reader *bufio.Reader) error {
	email, err := prompt(reader, "Enter email")
	if err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	msg, err := post(client, serverURL+"/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	fmt.Println(msg)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label + "\n> ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// post sends the payload and returns the server's message. Non-2xx responses
// become errors carrying the same message.
func post(client *http.Client, url string, payload map[string]string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("unexpected response (%s): %s", resp.Status, data)
	}

	if resp.StatusCode >= 300 || !parsed.Success {
		return "", fmt.Errorf("server: %s", parsed.Message)
	}

	return parsed.Message, nil
}
