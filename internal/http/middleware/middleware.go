// middleware содержит net/http мидлвары HTTP-слоя sqlchat.
package middleware

import (
	"net/http"
)

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// Chain оборачивает h так, что первый мидлвар из списка выполняется первым.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// responseTracker запоминает статус и объём ответа и то, начат ли он.
type responseTracker struct {
	http.ResponseWriter
	status int
	bytes  int
}

func track(w http.ResponseWriter) *responseTracker {
	if rt, ok := w.(*responseTracker); ok {
		return rt
	}
	return &responseTracker{ResponseWriter: w}
}

func (t *responseTracker) WriteHeader(code int) {
	if t.status != 0 {
		return
	}
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTracker) Write(p []byte) (int, error) {
	if t.status == 0 {
		t.WriteHeader(http.StatusOK)
	}

	n, err := t.ResponseWriter.Write(p)
	t.bytes += n
	return n, err
}

// Flush нужен потоковым ответам (http.ResponseController).
func (t *responseTracker) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		if t.status == 0 {
			t.status = http.StatusOK
		}
		f.Flush()
	}
}

func (t *responseTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}

// Started сообщает, ушли ли уже заголовки ответа.
func (t *responseTracker) Started() bool {
	return t.status != 0
}

// Status возвращает отправленный статус; 200, если обработчик ничего не писал.
func (t *responseTracker) Status() int {
	if t.status == 0 {
		return http.StatusOK
	}
	return t.status
}
