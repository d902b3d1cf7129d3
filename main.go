package main

import "mediaproc.dev/cli/cmd"

func main() {
	cmd.Execute()
}
