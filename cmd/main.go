package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCommand().Execute(); err != nil {
		log.Printf("Error: Got '%v'", err)
		os.Exit(1)
	}
}
