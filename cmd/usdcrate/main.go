// Command usdcrate inspects binary USD crate files.
package main

func main() {
	execute()
}
