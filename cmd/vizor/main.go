package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		runServe()
		return
	}

	switch os.Args[1] {
	case "serve":
		runServe()
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vizor — diagram rendering server for agent conversations

Usage:
  vizor [serve]    start the MCP stdio server and the viewer
  vizor version    print the version
  vizor help       show this help

Configuration is read from ~/.vizor/settings.json and VIZOR_* env vars.`)
}
