// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/contenv/contenv/cmd/contenv"

func main() {
	cmd.Execute()
}
