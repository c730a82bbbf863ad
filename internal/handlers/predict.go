package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// BatchPathSuffix routes API Gateway requests to the CSV batch endpoint.
const BatchPathSuffix = "/predict/batch"

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,Authorization,X-Request-ID",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	"Content-Type":                 "application/json",
}

// PredictHandler serves single and batch predictions behind API Gateway.
type PredictHandler struct {
	svc *Service
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(svc *Service) *PredictHandler {
	return &PredictHandler{svc: svc}
}

// Handle processes the API Gateway request.
func (h *PredictHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: corsHeaders}, nil
	}

	requestID := lambdaRequestID(request)

	if request.HTTPMethod != http.MethodPost {
		return proxyResponse(http.StatusMethodNotAllowed, Response{
			Success: false,
			Error:   "Method not allowed",
			Code:    CodeInvalidRequest,
		}, requestID), nil
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return proxyResponse(http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid base64 body",
				Code:    CodeInvalidRequest,
			}, requestID), nil
		}
		body = decoded
	}

	var status int
	var resp Response
	if strings.HasSuffix(strings.TrimRight(request.Path, "/"), BatchPathSuffix) {
		status, resp = h.svc.PredictBatch(requestID, string(body))
	} else {
		status, resp = h.svc.Predict(requestID, body)
	}

	return proxyResponse(status, resp, requestID), nil
}

func lambdaRequestID(request events.APIGatewayProxyRequest) string {
	if id := request.RequestContext.RequestID; id != "" {
		return id
	}
	return uuid.New().String()
}

func proxyResponse(status int, resp Response, requestID string) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(corsHeaders)+1)
	for k, v := range corsHeaders {
		headers[k] = v
	}
	headers["X-Request-ID"] = requestID

	body, _ := json.Marshal(resp)

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
