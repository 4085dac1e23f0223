// # cmd/blackdwarf/main.go
package main

import "github.com/LordOfPolls/BlackDwarf/internal/cliapp"

func main() {
	cliapp.Execute()
}
