package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// stdinIsTerminal reports whether interactive prompts are possible.
var stdinIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func interactive(cmd *cobra.Command) bool {
	if cmd.InOrStdin() != os.Stdin {
		return true
	}
	return stdinIsTerminal()
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// selectFromList prints a numbered list and returns the index the user picked.
func selectFromList(cmd *cobra.Command, subject string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no %s available", subject)
	}
	if len(options) == 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "Using %s: %s\n", subject, options[0])
		return 0, nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Select a %s:\n", subject)
	for i, option := range options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, option)
	}

	answer, err := promptLine(cmd, fmt.Sprintf("Enter 1-%d: ", len(options)))
	if err != nil {
		return 0, err
	}
	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 1 || choice > len(options) {
		return 0, fmt.Errorf("invalid selection %q", answer)
	}
	return choice - 1, nil
}

// confirmApply asks whether to write changes. Only a literal "yes" applies.
func confirmApply(cmd *cobra.Command) (bool, error) {
	answer, err := promptLine(cmd, "Apply these changes? Type 'yes' to write to the destination server: ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "yes"), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
