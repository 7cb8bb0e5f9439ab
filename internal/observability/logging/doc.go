// Package logging builds the process slog logger and attaches request
// correlation fields to it.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    logging.ForRequest(r.Context(), h.logger).Info("generation requested")
//	}
package logging
