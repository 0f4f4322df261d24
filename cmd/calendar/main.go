package main

import "github.com/Togather-Foundation/calendar/cmd/calendar/cmd"

func main() {
	cmd.Execute()
}
