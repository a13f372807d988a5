package api

import (
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope format.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every operation response in the standard envelope:
// {"v":1,"success":true,"data":...} for successes and
// {"v":1,"success":false,"code":...,"message":...} for errors.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch v.(type) {
	case response.Envelope, response.ErrorEnvelope:
		return v, nil
	}

	code, _ := strconv.Atoi(status)

	if err, ok := v.(error); ok {
		var target *APIError
		if !errors.As(err, &target) {
			target = apiError(code, err)
		}
		return response.ErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Code:    target.Code,
			Message: target.Message,
			Details: target.Details,
		}, nil
	}

	return response.Envelope{
		Version: EnvelopeVersion,
		Success: code == 0 || code < 400,
		Data:    v,
	}, nil
}
