package main

import "github.com/KaramelBytes/casescan/cmd"

func main() {
	cmd.Execute()
}
