package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptCommitMessage asks for a commit message on stderr and reads it from
// stdin. Lines are read until an empty line or EOF; the first line is the
// subject.
func PromptCommitMessage(stdin io.Reader, stderr io.Writer) (string, error) {
	fmt.Fprintf(stderr, "Commit message (finish with an empty line):\n> ")

	scanner := bufio.NewScanner(stdin)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" && len(lines) > 0 {
			break
		}
		if line != "" {
			lines = append(lines, line)
		}
		fmt.Fprint(stderr, "> ")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read commit message: %w", err)
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("commit cancelled: empty message")
	}

	message := lines[0]
	if len(lines) > 1 {
		message += "\n\n" + strings.Join(lines[1:], "\n")
	}
	return message, nil
}
