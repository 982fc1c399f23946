package main

import (
	"log"

	"github.com/dannygauntletai/autocrm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
