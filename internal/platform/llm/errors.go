package llm

import "fmt"

// HTTPError wraps a non-2xx response from the chat completions endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm: upstream returned status %d: %s", e.StatusCode, e.Body)
}
