package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"latex-resume-backend/internal/bootstrap"
	"latex-resume-backend/internal/shared/config"
	"latex-resume-backend/internal/shared/telemetry"
	"latex-resume-backend/internal/shared/tracing"
)

// proxy is built on the first invocation and reused by warm instances.
var proxy = sync.OnceValues(func() (*ginadapter.GinLambdaV2, error) {
	cfg := config.Load()
	if _, err := tracing.Init(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint); err != nil {
		telemetry.Warn("tracing.init_failed", map[string]any{"error": err.Error()})
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return nil, err
	}
	return ginadapter.NewV2(app.Router), nil
})

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	adapter, err := proxy()
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err.Error()})
		return errorResponse("bootstrap failed"), nil
	}
	return adapter.ProxyWithContext(ctx, req)
}

func errorResponse(message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]string{"code": "internal", "message": message},
	})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
