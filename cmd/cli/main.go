package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "customer":
		handleCustomer(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: eshift auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerCustomer(args[1:])
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: eshift customer <list|can-delete|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listCustomers(args[1:])
	case "can-delete":
		canDeleteCustomer(args[1:])
	case "delete":
		deleteCustomer(args[1:])
	default:
		fmt.Printf("unknown customer command: %s\n", subCmd)
	}
}

// Auth commands
func registerCustomer(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *firstName == "" || *lastName == "" || *email == "" || *password == "" {
		fmt.Println("Error: first-name, last-name, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"firstName": *firstName,
		"lastName":  *lastName,
		"email":     *email,
		"password":  *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/customers", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	switch resp.StatusCode {
	case http.StatusCreated:
		fmt.Printf("✓ Customer registered: %s (%v)\n", *email, result["customerNumber"])
	case http.StatusBadRequest:
		fmt.Println("✗ Registration rejected:")
		if messages, ok := result["messages"].([]interface{}); ok {
			for _, m := range messages {
				fmt.Printf("  - %v\n", m)
			}
		} else {
			fmt.Printf("  %v\n", result)
		}
	case http.StatusConflict:
		fmt.Printf("✗ Registration conflict: %v\n", result["error"])
	default:
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == http.StatusOK {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s (%v)\n", *email, result["role"])
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result["error"])
	}
}

func logout() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Customer commands
func listCustomers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/customers", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Listing failed: %v\n", result["error"])
		return
	}

	var listing struct {
		Customers []map[string]interface{} `json:"customers"`
		Count     int                      `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&listing)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tNAME\tEMAIL\tREGISTERED")
	for _, c := range listing.Customers {
		fmt.Fprintf(w, "%v\t%v\t%v %v\t%v\t%v\n",
			c["id"], c["customerNumber"], c["firstName"], c["lastName"], c["email"], c["registrationDate"])
	}
	w.Flush()
	fmt.Printf("%d customer(s)\n", listing.Count)
}

func canDeleteCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: eshift customer can-delete <customer-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/customers/"+args[0]+"/can-delete", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ Check failed: %v\n", result["error"])
		return
	}

	if canDelete, ok := result["canDelete"].(bool); ok && canDelete {
		fmt.Printf("✓ Customer %s has no jobs and can be deleted\n", args[0])
	} else {
		fmt.Printf("✗ Customer %s has job records and cannot be deleted\n", args[0])
	}
}

func deleteCustomer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: eshift customer delete <customer-id>")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/customers/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		fmt.Printf("✓ Customer %s deleted\n", args[0])
	case http.StatusConflict:
		fmt.Printf("✗ Customer %s has job records and cannot be deleted\n", args[0])
	case http.StatusNotFound:
		fmt.Printf("✗ Customer %s not found\n", args[0])
	default:
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ Delete failed: %v\n", result["error"])
	}
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("ESHIFT_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.eshift/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.eshift", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`e-Shift CLI

Usage:
  eshift <command> [options]

Commands:
  auth      Authentication (register, login, logout, who)
  customer  Customer operations (list, can-delete, delete) - admin access required
  help      Show this help message

Environment Variables:
  ESHIFT_API    API endpoint (default: http://localhost:8080/api)

Examples:
  eshift auth register -first-name Jane -last-name Doe -email jane@example.com -password 'Str0ng!Pazz'
  eshift auth login -email jane@example.com -password 'Str0ng!Pazz'
  eshift customer list
  eshift customer can-delete 42
  eshift customer delete 42
`)
}
