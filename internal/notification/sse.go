package notification

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteFrame writes msg as a single server-sent event data frame.
func WriteFrame(w io.Writer, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", body)
	return err
}

// WriteComment writes an SSE comment line, ignored by clients and used to
// keep idle proxies from closing the stream.
func WriteComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
