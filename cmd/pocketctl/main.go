// Package main provides a CLI for hashing, verifying shared proofs and
// running a local pocket walkthrough without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mysafepocket/internal/platform/logger"
	"mysafepocket/internal/pocket/hasher"
	"mysafepocket/internal/pocket/models"
	"mysafepocket/internal/pocket/proof"
	"mysafepocket/internal/pocket/service"
	"mysafepocket/internal/pocket/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "hash":
		return runHash(args[1:], stdout, stderr)
	case "verify":
		return runVerify(args[1:], stdin, stdout, stderr)
	case "demo":
		return runDemo(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func runHash(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: pocketctl hash <text>")
		return 2
	}
	fmt.Fprintln(stdout, hasher.Hash(strings.Join(args, " ")))
	return 0
}

func runVerify(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	file := cmd.String("f", "", "Read proof data from file instead of stdin")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	var (
		data []byte
		err  error
	)
	if *file != "" {
		data, err = os.ReadFile(*file)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "read proof data: %v\n", err)
		return 2
	}

	outcome := proof.Check(proof.NewVerifier(), string(data))
	switch outcome.Status {
	case proof.StatusVerified:
		fmt.Fprintln(stdout, "Verified")
		printDisclosed(stdout, outcome.Proof)
		return 0
	case proof.StatusFailed:
		fmt.Fprintln(stdout, "Verification Failed")
		return 1
	default:
		fmt.Fprintln(stdout, outcome.Message)
		return 1
	}
}

func printDisclosed(w io.Writer, p *models.SharedProof) {
	fmt.Fprintf(w, "  issuer: %s\n", p.Issuer)
	fmt.Fprintf(w, "  type:   %s\n", p.Type)
	for key, value := range p.Claims.All() {
		fmt.Fprintf(w, "  %s: %s\n", key, value.String())
	}
}

// runDemo creates a pocket in memory, issues one credential and prints the
// proof wire JSON for the selected claims.
func runDemo(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("demo", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	name := cmd.String("name", "Alice", "Display name of the pocket holder")
	fileName := cmd.String("file", "id.png", "Document file name")
	size := cmd.Int64("size", 37, "Document size in bytes")
	fileType := cmd.String("type", "image/png", "Document media type")
	claims := cmd.String("claims", "Name", "Comma-separated claim names to disclose")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	svc := service.NewService(store.NewInMemoryStore(), service.WithLogger(logger.NewWithWriter(io.Discard, "error")))
	sess, err := svc.Open(ctx, "demo")
	if err != nil {
		fmt.Fprintf(stderr, "open pocket: %v\n", err)
		return 1
	}
	defer svc.Close(ctx, sess) //nolint:errcheck // in-memory session

	ident, err := sess.CreatePocket(ctx, *name)
	if err != nil {
		fmt.Fprintf(stderr, "create pocket: %v\n", err)
		return 1
	}
	cred, err := sess.IssueCredential(ctx, models.SourceFile{Name: *fileName, Size: *size, Type: *fileType})
	if err != nil {
		fmt.Fprintf(stderr, "issue credential: %v\n", err)
		return 1
	}
	p, err := sess.GenerateProof(ctx, cred.ID, splitClaims(*claims))
	if err != nil || p == nil {
		fmt.Fprintf(stderr, "generate proof: %v\n", err)
		return 1
	}
	wire, err := proof.Encode(*p)
	if err != nil {
		fmt.Fprintf(stderr, "encode proof: %v\n", err)
		return 1
	}

	fmt.Fprintf(stderr, "did: %s\ncredential: %s (%s)\n", ident.DID, cred.ID, cred.TypeName)
	fmt.Fprintln(stdout, string(wire))
	return 0
}

func splitClaims(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `pocketctl - MySafePocket command line

Usage:
  pocketctl hash <text>          Print the signature hash of text
  pocketctl verify [-f file]     Verify proof data from file or stdin
  pocketctl demo [flags]         Run create, issue and prove in memory

Demo flags:
  -name string    Display name (default "Alice")
  -file string    Document file name (default "id.png")
  -size int       Document size in bytes (default 37)
  -type string    Document media type (default "image/png")
  -claims string  Claims to disclose, comma-separated (default "Name")
`)
}
