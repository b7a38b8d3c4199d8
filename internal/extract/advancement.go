// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/packmap/packmap/pkg/nsid"
)

// ErrInvalidAdvancement is the sentinel error wrapped by InvalidAdvancementError.
var ErrInvalidAdvancement = errors.New("invalid advancement")

// InvalidAdvancementError is returned when an advancement is not JSON or its
// reward function is not a string.
type InvalidAdvancementError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *InvalidAdvancementError) Error() string {
	return fmt.Sprintf("invalid advancement %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrInvalidAdvancement for errors.Is() compatibility.
func (e *InvalidAdvancementError) Unwrap() error { return ErrInvalidAdvancement }

// LinkAdvancement returns the reward link of an advancement. It reports false
// when the advancement grants no function reward, which is the common case.
func LinkAdvancement(r io.Reader, identity nsid.ID, origin string) (Fact, bool, error) {
	var doc struct {
		Rewards *struct {
			Function json.RawMessage `json:"function"`
		} `json:"rewards"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Fact{}, false, &InvalidAdvancementError{Path: origin, Cause: err}
	}
	if doc.Rewards == nil || len(doc.Rewards.Function) == 0 || string(doc.Rewards.Function) == "null" {
		return Fact{}, false, nil
	}

	var fn string
	if err := json.Unmarshal(doc.Rewards.Function, &fn); err != nil {
		return Fact{}, false, &InvalidAdvancementError{Path: origin, Cause: fmt.Errorf("rewards.function: %w", err)}
	}
	if fn == "" {
		return Fact{}, false, nil
	}

	return Fact{
		Provenance:  FromAdvancement,
		Source:      identity,
		Target:      nsid.Resolve(fn),
		TargetIsTag: nsid.IsTagRef(fn),
		Origin:      origin,
	}, true, nil
}
