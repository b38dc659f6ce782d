// Command reskit inspects and edits game resource containers described by
// layout profiles.
package main

func main() {
	execute()
}
