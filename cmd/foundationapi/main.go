package main

import "github.com/ayopaul/ejidike-foundation-sub002/cmd/foundationapi/cmd"

func main() {
	cmd.Execute()
}
