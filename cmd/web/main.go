package main

import "roastmyapp_backend/internal/app"

func main() {
	app.Run()
}
