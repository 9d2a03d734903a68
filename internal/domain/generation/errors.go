package generation

// ValidationError is a rejected upload; Message is shown to the client
// under Field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalidImage(message string) *ValidationError {
	return &ValidationError{Field: "image", Message: message}
}

// InferenceError wraps a failure of the remote vision model.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return "inference failed: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
