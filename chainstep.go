package main

import (
	"context"
	"fmt"

	"github.com/localeworks/lrm/chain"
	"github.com/localeworks/lrm/project"
)

// newChainStep builds a chain step from a step string like
// "add-key app.title 'My App'". The project is re-opened per step so each
// step sees the previous steps' on-disk changes.
func newChainStep(root, step string) chain.Step {
	args := splitStepArgs(step)
	name := step
	if len(args) > 0 {
		name = args[0]
	}
	return chain.Step{
		Name: name,
		Args: args,
		Run: func(ctx context.Context) error {
			return runChainStep(ctx, root, args)
		},
	}
}

// runChainStep dispatches one step to the matching project operation.
// Only mutating operations are chainable.
func runChainStep(ctx context.Context, root string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("empty chain step")
	}
	p, err := project.Open(root)
	if err != nil {
		return err
	}

	op, rest := args[0], args[1:]
	switch op {
	case "add-language":
		if len(rest) != 1 {
			return fmt.Errorf("add-language: want CODE, got %d argument(s)", len(rest))
		}
		_, err := p.AddLanguage(ctx, rest[0])
		return err

	case "remove-language":
		if len(rest) != 1 {
			return fmt.Errorf("remove-language: want CODE, got %d argument(s)", len(rest))
		}
		return p.RemoveLanguage(ctx, rest[0])

	case "add-key":
		switch len(rest) {
		case 1:
			return p.AddKey(ctx, rest[0], "", "")
		case 2:
			return p.AddKey(ctx, rest[0], rest[1], "")
		default:
			return fmt.Errorf("add-key: want KEY [VALUE], got %d argument(s)", len(rest))
		}

	case "remove-key":
		if len(rest) != 1 {
			return fmt.Errorf("remove-key: want KEY, got %d argument(s)", len(rest))
		}
		return p.RemoveKey(ctx, rest[0])

	case "set-value":
		if len(rest) != 3 {
			return fmt.Errorf("set-value: want CODE KEY VALUE, got %d argument(s)", len(rest))
		}
		code := rest[0]
		if code == "default" {
			code = ""
		}
		return p.SetValue(ctx, code, rest[1], rest[2])

	default:
		return fmt.Errorf("unknown chain operation %q", op)
	}
}

// splitStepArgs splits a step string on whitespace, honoring single and
// double quotes so values with spaces stay one argument.
func splitStepArgs(s string) []string {
	var (
		args    []string
		current []rune
		quote   rune
		inArg   bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current = append(current, r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, string(current))
				current = current[:0]
				inArg = false
			}
		default:
			current = append(current, r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, string(current))
	}
	return args
}
