// Command mkrom archives a directory tree as a ROM artifact, either as a
// binary file or as C or Go source declaring it as a constant.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
