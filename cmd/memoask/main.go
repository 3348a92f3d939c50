package main

import "github.com/nhle/memoask/internal/cmd"

func main() {
	cmd.Execute()
}
