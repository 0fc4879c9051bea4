package presenter

import (
	"encoding/json"
	"io"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
)

// JSONPresenter implements output.Presenter for JSON output
type JSONPresenter struct {
	output io.Writer
}

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter(output io.Writer) output.Presenter {
	return &JSONPresenter{output: output}
}

// PresentSuccess presents a successful result as JSON
func (p *JSONPresenter) PresentSuccess(message string, data interface{}) error {
	result := map[string]interface{}{
		"success": true,
		"message": message,
	}
	if data != nil {
		result["data"] = data
	}
	return json.NewEncoder(p.output).Encode(result)
}

// PresentError presents an error as JSON
func (p *JSONPresenter) PresentError(err error) error {
	result := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}
	if encErr := json.NewEncoder(p.output).Encode(result); encErr != nil {
		return encErr
	}
	return err
}
