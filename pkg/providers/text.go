package providers

import (
	"context"
	"strconv"

	"github.com/weftlabs/weft/pkg/ports"
)

// Start marks the beginning of a workflow. It does no work of its own;
// its value is the trigger edge leaving it.
func Start(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	return map[string]string{"message": "Workflow started successfully"}, nil
}

// Echo copies its text field to its text output.
func Echo(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	return map[string]string{"text": req.Fields["text"]}, nil
}

// TextMerger joins two texts with a separator. A side that is empty is
// skipped along with the separator, so partial inputs still merge cleanly.
func TextMerger(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	text1 := req.Fields["text1"]
	text2 := req.Fields["text2"]
	separator := req.Fields["separator"]

	var merged string
	switch {
	case text1 == "" && text2 == "":
		merged = ""
	case text1 == "":
		merged = text2
	case text2 == "":
		merged = text1
	default:
		merged = text1 + separator + text2
	}

	return map[string]string{
		"merged_text": merged,
		"length":      strconv.Itoa(len(merged)),
	}, nil
}
