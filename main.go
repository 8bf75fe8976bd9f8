// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/vermillion-mc/vermillion/cmd/vermillion"

func main() {
	cmd.Execute()
}
