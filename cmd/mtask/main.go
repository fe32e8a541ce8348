package main

import "github.com/goplus/mtask/cmd/mtask/internal"

func main() {
	internal.Execute()
}
