package transport

// SplitChunks cuts p into consecutive views of at most max bytes. Every
// chunk is exactly max bytes except possibly the last, and the chunks
// concatenate back to p. The views alias p; callers must not retain them
// past the next reuse of the payload buffer.
func SplitChunks(p []byte, max int) [][]byte {
	if max <= 0 || len(p) == 0 {
		return nil
	}
	chunks := make([][]byte, 0, (len(p)+max-1)/max)
	for len(p) > max {
		chunks = append(chunks, p[:max])
		p = p[max:]
	}
	return append(chunks, p)
}
