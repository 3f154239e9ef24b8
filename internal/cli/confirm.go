package cli

import (
	stderrors "errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/rileyhilliard/adminctl/internal/errors"
)

// stdinIsTerminal is swapped out by tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirmFunc asks a yes/no question. Swapped out by tests.
var confirmFunc = func(title, description string) (bool, error) {
	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&proceed),
		),
	)
	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return proceed, nil
}

// confirm gates a destructive action. --yes skips the prompt; without a
// terminal to ask on, the action is refused rather than assumed.
func confirm(autoYes bool, title, description string) (bool, error) {
	if autoYes {
		return true, nil
	}
	if !stdinIsTerminal() || machineMode {
		return false, errors.New(errors.ErrInput,
			"Refusing to continue without confirmation",
			"Re-run with --yes to confirm non-interactively.")
	}
	return confirmFunc(title, description)
}
