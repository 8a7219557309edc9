// Command chatctl keeps chat conversations in a local store and sends
// them to a chatgate gateway.
package main

import (
	"fmt"
	"os"

	"github.com/kbukum/chatgate/errors"

	_ "github.com/kbukum/chatgate/storage/local"
	_ "github.com/kbukum/chatgate/storage/s3"
)

func main() {
	config := NewCliConfig()
	rc, err := Cli(os.Args[1:], config)
	if err != nil {
		msg := err.Error()
		if appErr, ok := errors.AsAppError(err); ok {
			msg = appErr.Message
		}
		fmt.Fprintln(config.Stderr, "chatctl:", msg)
	}
	os.Exit(rc)
}
