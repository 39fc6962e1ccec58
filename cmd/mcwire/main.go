package main

import "go.minekube.com/mcwire/pkg/cmd/mcwire"

func main() {
	mcwire.Execute()
}
