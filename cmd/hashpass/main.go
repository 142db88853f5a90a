package main

import (
	"fmt"
	"os"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/auth"
)

// Gera hash argon2id para semear senhas direto no banco.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		os.Exit(1)
	}

	hash, err := auth.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
