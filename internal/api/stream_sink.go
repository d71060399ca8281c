package api

import "net/http"

// responseSink adapts an http.ResponseWriter into the relay's downstream
// sink. The request context, not the sink, signals viewer disconnects.
type responseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newResponseSink(w http.ResponseWriter) *responseSink {
	flusher, _ := w.(http.Flusher)
	return &responseSink{w: w, flusher: flusher}
}

func (s *responseSink) SetContentType(contentType string) {
	s.w.Header().Set("Content-Type", contentType)
	s.w.WriteHeader(http.StatusOK)
}

func (s *responseSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *responseSink) Flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
