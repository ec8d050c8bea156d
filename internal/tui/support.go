package tui

import (
	"context"

	"github.com/abakada/admissions-portal/internal/collab"
)

// contextTODO is the context handed to collaborator commands. Commands run
// off the update loop and the program has no cancellation story beyond
// process exit, so a background context is enough.
func contextTODO() context.Context {
	return context.Background()
}

// userFacing phrases a collaborator failure for the status line.
func userFacing(err error) string {
	if err == nil {
		return ""
	}
	return collab.UserMessage(err)
}
