package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-writer/internal/tui/confirm"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FlushNotices prints pending service notices to stderr.
func FlushNotices(s *service.Service) {
	if s == nil {
		return
	}
	for _, n := range s.Notices() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", strings.ToUpper(n.Level.String()), n.Message)
	}
}

// confirmAction asks the user before a destructive action unless skip is set.
// Without a terminal on stdin it reads one line and only "y" or "yes"
// confirms, so piped or empty input declines.
func confirmAction(cmd *cobra.Command, skip bool, prompt string) (bool, error) {
	if skip {
		return true, nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return confirm.Ask(prompt, in, cmd.ErrOrStderr())
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
