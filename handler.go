package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":      "*",
	"Access-Control-Allow-Credentials": "true",
}

type errorBody struct {
	Message string `json:"message"`
}

// LambdaHandler serves the price list to API Gateway.
type LambdaHandler struct {
	conn   connectionGetter
	logger *zap.Logger
}

// CreateLambdaHandler ...
func CreateLambdaHandler(conn connectionGetter, logger *zap.Logger) *LambdaHandler {
	return &LambdaHandler{conn: conn, logger: logger}
}

// Handle returns every price record. Failures are logged and answered with a
// 500; the returned error is always nil so API Gateway sees the response.
func (h *LambdaHandler) Handle(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	prices, err := retrieveAll(ctx, h.conn)
	if err != nil {
		return h.fail(err), nil
	}
	h.logger.Info("Retrieved prices", zap.Int("count", len(prices)))

	body, err := encodeIndented(prices)
	if err != nil {
		return h.fail(errors.Wrap(err, "encode prices")), nil
	}
	return response(http.StatusOK, body, nil), nil
}

func (h *LambdaHandler) fail(err error) events.APIGatewayProxyResponse {
	h.logger.Error("Request failed", zap.Error(err))
	body, _ := encodeIndented(errorBody{Message: http.StatusText(http.StatusInternalServerError)})
	return response(http.StatusInternalServerError, body, map[string]string{"Content-Type": "application/json"})
}

// encodeIndented renders v with two-space indentation and without escaping
// HTML characters.
func encodeIndented(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func response(status int, body []byte, extra map[string]string) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(corsHeaders)+len(extra))
	for k, v := range corsHeaders {
		headers[k] = v
	}
	for k, v := range extra {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
