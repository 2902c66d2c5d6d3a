// Command ethersim runs scripted simulations of a small Ethernet-like
// network.
package main

import "github.com/sarchlab/ethersim/cmd/ethersim/cmd"

func main() {
	cmd.Execute()
}
