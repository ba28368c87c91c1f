package main

import "github.com/dgallion1/treerag/internal/cli"

func main() {
	cli.Execute()
}
