package output

// Presenter formats command results for the user. Implementations exist
// for human-readable text and JSON.
type Presenter interface {
	// PresentSuccess presents a message and optional data
	// (a dto.TaskDTO, a []dto.TaskDTO or nil)
	PresentSuccess(message string, data interface{}) error

	// PresentError presents an error and returns it unchanged
	PresentError(err error) error
}
