package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"example.com/notes-ai/internal/stringsx"
)

type asker interface {
	Ask(ctx context.Context, questions, answers []string) (string, error)
}

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask the assistant about your notes (one question per line)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return askLoop(cmd.Context(), apiClient(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// askLoop keeps the whole conversation and sends it with every question.
// A failed turn is kept with an empty answer so the next prompt still
// carries the question.
func askLoop(ctx context.Context, a asker, in io.Reader, out io.Writer) error {
	var questions, answers []string

	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		q := strings.TrimSpace(sc.Text())
		if stringsx.IsEmpty(q) {
			fmt.Fprint(out, "> ")
			continue
		}

		questions = append(questions, q)
		answer, err := a.Ask(ctx, questions, answers)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
			answer = ""
		} else {
			fmt.Fprintln(out, answer)
		}
		answers = append(answers, answer)
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	return sc.Err()
}

func init() {
	rootCmd.AddCommand(askCmd)
}
