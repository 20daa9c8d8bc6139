package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/doctrot/site-server-go/internal/util"
)

// Prints a hash suitable for ADMIN_PASSWORD_HASH.
func main() {
	algorithm := flag.String("algo", "bcrypt", "hash algorithm: bcrypt or argon2id")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/hash-password.go [-algo bcrypt|argon2id] <password>\n")
		os.Exit(1)
	}

	hasher, err := util.NewPasswordHasher(*algorithm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	hash, err := hasher.Hash(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
