// SPDX-License-Identifier: MPL-2.0

package main

import cmd "relcheck/cmd/relcheck"

func main() {
	cmd.Execute()
}
