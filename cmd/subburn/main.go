package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"subburn/internal/services"
)

func main() {
	err := newRootCommand().Execute()
	switch {
	case err == nil:
		return
	case errors.Is(err, context.Canceled):
		os.Exit(130)
	case errors.Is(err, services.ErrValidation):
		fmt.Fprintln(os.Stderr, "subburn:", err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "subburn:", err)
		os.Exit(1)
	}
}
