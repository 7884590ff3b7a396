package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Hashes an admin API key for config storage; the auth middleware accepts
// either the raw key or a bcrypt hash of it.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <admin-api-key>\n", os.Args[0])
		os.Exit(2)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash key: %v", err)
	}

	fmt.Println(string(hash))
}
