package main

import "github.com/qrave1/Gamefinity/cmd"

func main() {
	cmd.Execute()
}
