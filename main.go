// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/packmap/packmap/cmd/packmap"

func main() {
	cmd.Execute()
}
