package main

import (
	"example.com/freightline/services/settlement/cmd"
)

func main() {
	cmd.Execute()
}
