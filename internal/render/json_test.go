// SPDX-License-Identifier: MPL-2.0

package render

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, "demo", sampleGraph()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Name != "demo" || len(doc.Nodes) != 3 || len(doc.Edges) != 3 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Nodes[0].ID != "#ns:hooks" || doc.Nodes[0].Category != "virtual" {
		t.Errorf("first node = %+v", doc.Nodes[0])
	}
	if e := doc.Edges[2]; !e.Scheduled || e.Label != "5t" || e.Provenance != "script" {
		t.Errorf("scheduled edge = %+v", e)
	}
}
