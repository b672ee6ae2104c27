package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errEmptySecret = errors.New("no password entered")

// promptSecret prints prompt and reads one line from stdin with terminal echo
// turned off.
func promptSecret(prompt string, stdin *os.File, out io.Writer) (string, error) {
	if stdin == nil {
		return "", errors.New("stdin unavailable")
	}
	fmt.Fprint(out, prompt)

	var secret string
	err := withEchoDisabled(stdin, func() error {
		value, readErr := readSecretLine(stdin)
		secret = value
		return readErr
	})
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return secret, nil
}

func readSecretLine(source io.Reader) (string, error) {
	line, err := bufio.NewReader(source).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return "", errEmptySecret
	}
	return line, nil
}
