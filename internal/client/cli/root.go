package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// getStatus renders the prompt decoration: username plus connectivity mode.
func (a *App) getStatus() string {
	s := ""
	if name := a.session.Username(); name != "" {
		s = name + " "
	}
	if a.monitor.IsOnline() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// Root runs the interactive loop until EOF or exit.
func (a *App) Root(ctx context.Context) {
	printlnFn("Field sales client (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
