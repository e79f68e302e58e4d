package main

import (
	"fmt"

	"github.com/samuelfneumann/govalue/cli"
)

func main() {
	if err := cli.RootCommand().Execute(); err != nil {
		fmt.Println(err)
	}
}
