package main

import "domainadmin/internal/cmd"

func main() {
	cmd.Execute()
}
