package main

import "resumeai_backend/internal/app"

func main() {
	app.Run()
}
