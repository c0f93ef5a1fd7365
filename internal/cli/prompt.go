package cli

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("cli: prompt aborted")

// Prompter asks the user to pick a class.
type Prompter interface {
	SelectClass(ctx context.Context, classes []string) (string, error)
}

type surveyPrompter struct {
	pageSize int
}

func (p surveyPrompter) SelectClass(ctx context.Context, classes []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(classes) == 0 {
		return "", errors.New("cli: no classes to choose from")
	}
	var out string
	prompt := &survey.Select{
		Message: "Class:",
		Options: classes,
		Help:    "Serializer metadata is printed for the selected class.",
	}
	if p.pageSize > 0 {
		prompt.PageSize = p.pageSize
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return out, nil
}
