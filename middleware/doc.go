// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions for the relay.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /api/submissions", middleware.WithLogging(handler))

Every request gets an id (the caller's X-Request-ID, or a new UUID) that is
echoed in the response header and available to handlers through
RequestID(r.Context()). Start and completion are logged with the status
code, bytes written and duration_ms.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin, mux),
	}

An empty origin reflects the request's Origin header. Preflight requests
are answered with 204 and never reach the mux.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusCreated, resp)
	middleware.ErrorResponse(w, http.StatusConflict, "A submission for this session already exists.")

Error bodies carry the status text in "error" and the human message in
"message"; the survey client shows "message".

ParseJSONBody decodes numbers as json.Number so loosely typed response
values reach the CSV serializer exactly as sent.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For (first hop), X-Real-IP, then RemoteAddr. The result
is only ever stored hashed.
*/
package middleware
