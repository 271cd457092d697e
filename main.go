package main

import "attentiond/internal/app"

func main() {
	app.Main()
}
