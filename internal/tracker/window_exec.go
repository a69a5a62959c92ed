//go:build linux || darwin

package tracker

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const commandTimeout = 2 * time.Second

// runCommand runs a helper tool and returns its trimmed stdout.
func runCommand(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return strings.TrimSpace(string(out)), err
}
