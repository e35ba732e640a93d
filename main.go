// Idiomatic entrypoint for Cobra CLI that delegates handling to the
// root command in cmd/root.go.

package main

import (
	"github.com/shadowsim/controller/cmd"
)

func main() {
	cmd.Execute()
}
