// Package api holds the wire types and routing of the operator HTTP API,
// generated from openapi.yaml, plus the JSON response helpers the handlers
// share. Amounts in requests are rupee strings ("1200.50"); amounts in
// responses are integer paise.
package api

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.4.1 --config=oapi-codegen.yaml openapi.yaml
