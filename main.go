// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	cmd "github.com/ppowo/gmw/cmd/gmw"
)

func main() {
	os.Exit(cmd.Main())
}
