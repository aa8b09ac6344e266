package main

import "github.com/tejiriaustin/filemonitor/cmd"

func main() {
	cmd.Execute()
}
