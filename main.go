package main

import (
	"log"

	"github.com/derivekit/derivekit/cmd"
)

func main() {
	log.Default().SetFlags(0)
	cmd.Execute()
}
