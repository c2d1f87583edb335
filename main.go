package main

import (
	"github.com/DeterminateSystems/flakedit/internal/cmd"
)

func main() {
	cmd.Execute()
}
