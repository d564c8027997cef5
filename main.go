package main

import "pawfeed-backend/cmd"

func main() {
	cmd.Run()
}
