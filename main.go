package main

import "github.com/KaramelBytes/bookdash/cmd"

func main() {
	cmd.Execute()
}
