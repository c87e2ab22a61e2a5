package main

// main is the entry point for the json-mirror application. Build-time
// variables are declared in root.go.
func main() {
	Execute()
}
