// Command copilotctl is the support tool for founder-copilot: it inspects
// and grants entitlement and reproduces payment signatures.
package main

func main() {
	Execute()
}
