package presenter

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
)

var (
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// CLITaskPresenter implements output.Presenter as aligned text columns
type CLITaskPresenter struct {
	output io.Writer
}

// NewCLITaskPresenter creates a new CLI task presenter
func NewCLITaskPresenter(output io.Writer) output.Presenter {
	return &CLITaskPresenter{output: output}
}

// PresentSuccess presents a successful result
func (p *CLITaskPresenter) PresentSuccess(message string, data interface{}) error {
	fmt.Fprintln(p.output, okStyle.Render("✓ "+message))

	switch v := data.(type) {
	case nil:
		return nil
	case dto.TaskDTO:
		return p.presentTable([]dto.TaskDTO{v})
	case []dto.TaskDTO:
		if len(v) == 0 {
			fmt.Fprintln(p.output, "(none)")
			return nil
		}
		return p.presentTable(v)
	default:
		fmt.Fprintf(p.output, "%+v\n", data)
	}
	return nil
}

// PresentError presents an error
func (p *CLITaskPresenter) PresentError(err error) error {
	fmt.Fprintln(p.output, errStyle.Render(fmt.Sprintf("✗ Error: %v", err)))
	return err
}

func (p *CLITaskPresenter) presentTable(items []dto.TaskDTO) error {
	w := tabwriter.NewWriter(p.output, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tSTART\tEND\tMIN\tEPIC\tTITLE")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Type, it.Status,
			orDash(it.StartTime), orDash(it.EndTime),
			minutes(it.Duration), epicRef(it.EpicID), it.Title)
	}
	return w.Flush()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func minutes(d *int64) string {
	if d == nil {
		return "-"
	}
	return strconv.FormatInt(*d, 10)
}

func epicRef(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}
