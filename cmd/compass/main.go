package main

import "compass_apiserver/internal/cmd"

func main() {
	cmd.Execute()
}
