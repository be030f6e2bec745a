package main

import "MeetMind/cmd/meetmind-cli/cmd"

func main() {
	cmd.Execute()
}
