package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"example.com/notes-ai/internal/editor"
)

var editAppend bool

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note from stdin, saving after each pause in typing",
	Long: `edit reads stdin line by line. Every line updates the note's draft at
once; the note is saved only after no new line arrived for the debounce
period, and once more at end of input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := apiClient()
		ctx := cmd.Context()

		initial := ""
		if editAppend {
			n, err := c.GetNote(ctx, args[0])
			if err != nil {
				return err
			}
			initial = n.Text
		}

		errOut := cmd.ErrOrStderr()
		_, err := editLines(ctx, c, args[0], initial, cmd.InOrStdin(), debounce, func(err error) {
			fmt.Fprintf(errOut, "save failed: %v\n", err)
		})
		return err
	},
}

// editLines feeds in into an editor session and returns the final draft.
func editLines(ctx context.Context, saver editor.Saver, id, initial string, in io.Reader, window time.Duration, onError func(error)) (string, error) {
	s := editor.NewSession(id, initial, saver, window, editor.WithErrorHandler(onError))

	var b strings.Builder
	b.WriteString(initial)

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(sc.Text())
		if err := s.Edit(b.String()); err != nil {
			return "", err
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}

	s.Flush()
	if err := s.Close(ctx); err != nil {
		return "", err
	}
	return s.Draft().Text(), nil
}

func init() {
	editCmd.Flags().BoolVar(&editAppend, "append", false, "append to the note's current text instead of replacing it")
	rootCmd.AddCommand(editCmd)
}
