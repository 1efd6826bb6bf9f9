package main

import "github.com/aallbrig/hawkbot/cmd"

func main() {
	cmd.Execute()
}
