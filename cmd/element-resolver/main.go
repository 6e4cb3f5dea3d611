package main

import "github.com/devicelab-dev/element-resolver/pkg/cli"

func main() {
	cli.Execute()
}
