package main

import "github.com/expectedbehaviors/organizr-tab-controller/cmd"

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
