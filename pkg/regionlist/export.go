package regionlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kass/geofencer/pkg/region"
)

// EncodeAll encodes every region in order
func EncodeAll(regions []region.Region) ([]string, error) {
	encoded := make([]string, len(regions))
	for i, r := range regions {
		text, err := r.Encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode region %d: %w", i, err)
		}
		encoded[i] = text
	}
	return encoded, nil
}

// Export renders regions as a JSON array of their encoded objects
func Export(regions []region.Region) (string, error) {
	encoded, err := EncodeAll(regions)
	if err != nil {
		return "", err
	}

	raws := make([]json.RawMessage, len(encoded))
	for i, text := range encoded {
		raws[i] = json.RawMessage(text)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raws); err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeAll parses an Export payload. Each element is decoded on its own:
// valid regions are returned even when others fail, with the failures
// joined into the error.
func DecodeAll(text string, opts ...region.DecodeOption) ([]region.Region, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raws); err != nil {
		return nil, &region.ParseError{Err: err}
	}

	regions := make([]region.Region, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		r, err := region.Decode(string(raw), opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		regions = append(regions, r)
	}
	return regions, errors.Join(errs...)
}
