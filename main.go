package main

import "reddit-archiver/cmd"

func main() {
	cmd.Execute()
}
