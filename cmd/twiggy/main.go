package main

import "github.com/rustwasm/twiggy-sub000/cmd/twiggy/cmd"

func main() {
	cmd.Execute()
}
