package llm

// StreamChunk is one piece of a streamed completion.
type StreamChunk struct {
	Error    error
	Role     string
	Content  string
	Finished bool
}

// IsError reports whether the chunk carries a stream error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}

// Collect drains a stream into a single string. It returns the first error
// chunk encountered, after draining the rest of the channel so the producer
// goroutine can exit.
func Collect(stream <-chan *StreamChunk) (role string, content string, err error) {
	for chunk := range stream {
		if chunk.IsError() {
			if err == nil {
				err = chunk.Error
			}
			continue
		}
		if chunk.Role != "" {
			role = chunk.Role
		}
		content += chunk.Content
	}
	return role, content, err
}
