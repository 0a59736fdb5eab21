package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/passgen"
)

// Generate prints a random password built from the chosen options.
func (a *App) Generate(ctx context.Context) error {
	for {
		o, err := a.readGeneratorOptions()
		if err != nil {
			return err
		}

		pw, err := passgen.Generate(o)
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintln(a.out, describeError(err))
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Generated password: %s\n", pw)
		return nil
	}
}

func (a *App) readGeneratorOptions() (passgen.Options, error) {
	o := passgen.DefaultOptions()

	length, err := getSimpleText(a.reader, fmt.Sprintf("Length (%d-%d) [%d]", passgen.MinLength, passgen.MaxLength, o.Length), a.out)
	if err != nil {
		return o, err
	}
	if length != "" {
		if o.Length, err = strconv.Atoi(length); err != nil {
			o.Length = 0
		}
	}

	questions := []struct {
		prompt string
		value  *bool
	}{
		{"Include uppercase letters?", &o.Upper},
		{"Include lowercase letters?", &o.Lower},
		{"Include digits?", &o.Digits},
		{"Include symbols?", &o.Symbols},
		{"Exclude similar characters (I, l, 1, O, 0, o)?", &o.ExcludeSimilar},
	}
	for _, q := range questions {
		if *q.value, err = getYesNo(a.reader, q.prompt, *q.value, a.out); err != nil {
			return o, err
		}
	}
	return o, nil
}
