package main

import "github.com/zexi/garage-status/cmd/garagectl/cmd"

func main() {
	cmd.Execute()
}
