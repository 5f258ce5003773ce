package main

import "mediascrub/cmd"

func main() {
	cmd.Execute()
}
