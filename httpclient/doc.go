// Package httpclient is the outbound transport for provider APIs that are
// called over raw HTTP (Anthropic, Google).
//
//	c, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.anthropic.com/v1",
//	    Headers: map[string]string{"anthropic-version": "2023-06-01"},
//	})
//	stream, err := c.DoStream(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/messages",
//	    Body:   payload,
//	    Auth:   httpclient.APIKeyHeader(key, "x-api-key"),
//	})
//	defer stream.Close()
//	for {
//	    ev, err := stream.SSE.Next()
//	    ...
//	}
//
// Error statuses are returned as *Error before any bytes are streamed, so
// callers can map them to the gateway's pre-stream error response.
package httpclient
