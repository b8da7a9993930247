// Where: internal/app/prompter.go
// What: Interactive confirmation prompts.
// Why: Destructive operations ask before proceeding.
package app

import "github.com/charmbracelet/huh"

// Prompter asks the user yes/no questions. Tests inject canned answers.
type Prompter interface {
	Confirm(title string) (bool, error)
}

// HuhPrompter implements Prompter using the huh TUI library.
type HuhPrompter struct{}

func (HuhPrompter) Confirm(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
