// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/packmap/packmap/pkg/nsid"
)

// ErrInvalidTagFormat is the sentinel error wrapped by InvalidTagFormatError.
var ErrInvalidTagFormat = errors.New("invalid tag format")

// InvalidTagFormatError is returned when a tag file is not JSON or its
// "values" field is missing or not an array of strings.
type InvalidTagFormatError struct {
	Path   string
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *InvalidTagFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid tag %s: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid tag %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrInvalidTagFormat for errors.Is() compatibility.
func (e *InvalidTagFormatError) Unwrap() error { return ErrInvalidTagFormat }

// ExpandTag decodes a function tag and returns one fact per member, sourced
// from the tag's virtual "#ns:path" node. Member order is preserved.
func ExpandTag(r io.Reader, tag nsid.ID, origin string) ([]Fact, error) {
	var doc struct {
		Values json.RawMessage `json:"values"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &InvalidTagFormatError{Path: origin, Reason: "malformed JSON", Cause: err}
	}
	if len(doc.Values) == 0 || string(doc.Values) == "null" {
		return nil, &InvalidTagFormatError{Path: origin, Reason: `missing "values" field`}
	}

	var values []string
	if err := json.Unmarshal(doc.Values, &values); err != nil {
		return nil, &InvalidTagFormatError{Path: origin, Reason: `"values" must be an array of strings`, Cause: err}
	}

	source := nsid.TagRef(tag)
	facts := make([]Fact, 0, len(values))
	for _, v := range values {
		facts = append(facts, Fact{
			Provenance:  FromTag,
			Source:      source,
			Target:      nsid.Resolve(v),
			TargetIsTag: nsid.IsTagRef(v),
			Origin:      origin,
		})
	}
	return facts, nil
}
