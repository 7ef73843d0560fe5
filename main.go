package main

import "github.com/KaramelBytes/causeboard/cmd"

func main() {
	cmd.Execute()
}
