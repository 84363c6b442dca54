package main

import "github.com/ptao/Unlock-Redux/cmd"

func main() {
	cmd.Execute()
}
