// tagreport resolves raw tag ids in a key-value dump into a per-user report
// and scores predicted tags against actual ones.
package main

import (
	"fmt"
	"os"

	"github.com/corey/tagreport/cmd/tagreport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
