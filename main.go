package main

import "github.com/kaushiktak19/blog-website/cmd"

func main() {
	cmd.Execute()
}
