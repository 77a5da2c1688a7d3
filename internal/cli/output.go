package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/coderi421/adkit/service"
)

const (
	ExitSuccess = 0
	// ExitFailure 远端返回了错误，例如 fault
	ExitFailure = 1
	// ExitCommandError 参数或者配置不对
	ExitCommandError = 2
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that are not an *ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// printer writes results either as aligned text columns or as one JSON
// document.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string, w io.Writer) *printer {
	return &printer{format: format, w: w}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table 文本模式下按列对齐，JSON 模式下输出 v
func (p *printer) table(v any, header []string, rows [][]string) error {
	if p.format == "json" {
		return p.json(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (p *printer) entities(rows []service.Entity) error {
	text := make([][]string, 0, len(rows))
	for _, r := range rows {
		text = append(text, []string{r.EntityID(), r.EntityName()})
	}
	if rows == nil {
		rows = []service.Entity{}
	}
	return p.table(rows, []string{"ID", "NAME"}, text)
}

// message 文本模式下原样输出，JSON 模式下包一层
func (p *printer) message(key string, v any, text string) error {
	if p.format == "json" {
		return p.json(map[string]any{key: v})
	}
	_, err := fmt.Fprintln(p.w, text)
	return err
}
