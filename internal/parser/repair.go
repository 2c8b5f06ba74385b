package parser

import (
	"context"
	"errors"
	"log"

	"ledgerd/internal/port"
)

// completeAndDecode runs one completion and enforces the JSON-only
// contract, with a single bounded repair round-trip on malformed output.
// Returns (nil, parseErr, nil) when the output stays malformed after the
// repair: the tier records the parse error and yields zero transactions
// instead of failing the import. Transport errors still propagate.
func completeAndDecode(ctx context.Context, model port.ChatModel, req port.CompletionRequest) (*modelOutput, string, error) {
	raw, err := model.Complete(ctx, req)
	if err != nil {
		return nil, "", err
	}

	out, derr := decodeModelOutput(model.Model(), raw)
	if derr == nil {
		return out, "", nil
	}

	var malformed *MalformedOutputError
	if !errors.As(derr, &malformed) {
		return nil, "", derr
	}

	log.Printf("parser.completeAndDecode: malformed output from %s, attempting repair: %v", model.Model(), malformed.Err)

	repairReq := port.CompletionRequest{
		UserPrompt: BuildRepairPrompt(stripCodeFences(raw), malformed.Err.Error()),
	}
	repaired, err := model.Complete(ctx, repairReq)
	if err != nil {
		return nil, "", err
	}

	out, derr = decodeModelOutput(model.Model(), repaired)
	if derr == nil {
		return out, "", nil
	}
	return nil, derr.Error(), nil
}
