package main

import (
	"log"

	"github.com/masonvale/notifyhub/cmd/notifyctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
