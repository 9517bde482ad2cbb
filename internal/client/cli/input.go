package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/shared"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetToken reads an access token from the terminal without echo.
func GetToken(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter access token: "); err != nil {
		return "", err
	}
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer shared.WipeByteArray(b)
	return strings.TrimSpace(string(b)), nil
}

// GetMultiline prints a prompt to w and reads multiple lines until an empty
// line is entered. The collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(readLines(reader), "\n")), nil
}

// GetItems reads "tag=text" lines until an empty line. A line starting with
// "[x]" marks the item done. Lines without '=' get an empty tag.
func GetItems(reader *bufio.Reader, w io.Writer) ([]models.Item, error) {
	if _, err := fmt.Fprint(w, "Enter items as tag=text, prefix [x] when done (empty line to finish)\n"); err != nil {
		return nil, err
	}
	items := make([]models.Item, 0)
	for _, line := range readLines(reader) {
		if it, ok := parseItem(line); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func parseItem(line string) (models.Item, bool) {
	line = strings.TrimSpace(line)
	var it models.Item
	if rest, ok := strings.CutPrefix(line, "[x]"); ok {
		it.Done = true
		line = strings.TrimSpace(rest)
	}
	if tag, text, ok := strings.Cut(line, "="); ok {
		it.Tag = strings.TrimSpace(tag)
		it.Text = strings.TrimSpace(text)
	} else {
		it.Text = line
	}
	return it, it.Text != ""
}

func readLines(reader *bufio.Reader) []string {
	lines := make([]string, 0)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return lines
}
