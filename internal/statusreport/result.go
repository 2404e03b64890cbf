package statusreport

import (
	"errors"
	"strings"
)

// Result is the outcome of a build, shaped for tool-call responses.
type Result struct {
	Success       bool   `json:"success"`
	FilePath      string `json:"file_path,omitempty"`
	SlidesCreated int    `json:"slides_created,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Succeeded reports a deck written for the brand.
func (b Brand) Succeeded(path string, slides int) Result {
	return Result{
		Success:       true,
		FilePath:      path,
		SlidesCreated: slides,
		Message:       strings.TrimSpace(b.Title() + " Status Report created successfully"),
	}
}

// Failed reports a build failure. All failures share this one shape.
func Failed(err error) Result {
	msg := "build failed"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{Success: false, Error: msg}
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}
