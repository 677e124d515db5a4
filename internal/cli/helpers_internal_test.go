package cli

import (
	"io"
	"os"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
)

func newTestPrinter(w io.Writer) *pretty.OpPrinter {
	return pretty.NewOpPrinter(w, pretty.NewStyles(false), nil)
}

func writeString(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func appendString(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}
