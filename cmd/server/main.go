// Package main is the entry point for the midiroll API server
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/james-see/midiroll/pkg/api"
)

var version = "dev"

func main() {
	port := flag.Int("port", defaultPort(), "Server port (MIDIROLL_PORT overrides the default)")
	flag.Parse()

	fmt.Printf("midiroll API server %s\n", version)
	fmt.Printf("Listening on port %d\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// defaultPort reads MIDIROLL_PORT so deployments can set the port
// without changing the unit's command line.
func defaultPort() int {
	if v := os.Getenv("MIDIROLL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return 8080
}
