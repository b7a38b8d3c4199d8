// SPDX-License-Identifier: MPL-2.0

package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/packmap/packmap/internal/discovery"
	"github.com/packmap/packmap/pkg/nsid"
)

type (
	// Result is the output of one producer over one package.
	Result struct {
		// Kind is the artifact family the producer read.
		Kind discovery.Kind
		// Files is the number of artifacts visited.
		Files int
		// Facts are the extracted facts in discovery order.
		Facts []Fact
		// Diagnostics lists artifacts that were skipped.
		Diagnostics []discovery.Diagnostic
	}

	// identifyFunc derives the graph identity of an artifact.
	identifyFunc func(a discovery.Artifact) (nsid.ID, error)

	// parseFunc turns an open artifact into facts.
	parseFunc func(r io.Reader, id nsid.ID, origin string) ([]Fact, error)
)

// Functions extracts invocation facts from every command script in pkg.
func Functions(ctx context.Context, pkg *discovery.Package) (Result, error) {
	return produce(ctx, pkg, discovery.KindFunction, normalizedID, ExtractFunction)
}

// Tags expands every function tag in pkg.
func Tags(ctx context.Context, pkg *discovery.Package) (Result, error) {
	return produce(ctx, pkg, discovery.KindTag, normalizedID, ExpandTag)
}

// Advancements links every advancement reward in pkg.
func Advancements(ctx context.Context, pkg *discovery.Package) (Result, error) {
	return produce(ctx, pkg, discovery.KindAdvancement, AdvancementIdentity,
		func(r io.Reader, id nsid.ID, origin string) ([]Fact, error) {
			f, ok, err := LinkAdvancement(r, id, origin)
			if err != nil || !ok {
				return nil, err
			}
			return []Fact{f}, nil
		})
}

// All runs the three producers in order and returns their results. Only
// context cancellation is returned as an error.
func All(ctx context.Context, pkg *discovery.Package) ([]Result, error) {
	producers := []func(context.Context, *discovery.Package) (Result, error){Functions, Tags, Advancements}
	results := make([]Result, 0, len(producers))
	for _, p := range producers {
		res, err := p(ctx, pkg)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// AdvancementIdentity names an advancement node by its datapack-qualified file
// path. Advancements are always leaf virtual nodes, and the path never
// collides with the function an advancement rewards.
func AdvancementIdentity(a discovery.Artifact) (nsid.ID, error) {
	return nsid.ID(a.Package + "/" + a.RelPath), nil
}

func normalizedID(a discovery.Artifact) (nsid.ID, error) {
	return nsid.Normalize(a.RelPath, a.Kind.Depth())
}

func produce(ctx context.Context, pkg *discovery.Package, kind discovery.Kind, identify identifyFunc, parse parseFunc) (Result, error) {
	res := Result{Kind: kind}
	for a, walkErr := range pkg.Artifacts(kind) {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("extract %s files: %w", kind, err)
		}
		if walkErr != nil {
			res.Diagnostics = append(res.Diagnostics, discovery.NewError(discovery.CodeWalkFailed, pkg.Root, walkErr))
			continue
		}

		res.Files++
		facts, err := parseArtifact(a, identify, parse)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, discovery.NewError(diagnosticCode(err), a.Path, err))
			continue
		}
		res.Facts = append(res.Facts, facts...)
	}
	return res, nil
}

// parseArtifact holds the file open only for the duration of parse.
func parseArtifact(a discovery.Artifact, identify identifyFunc, parse parseFunc) ([]Fact, error) {
	id, err := identify(a)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(a.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	return parse(f, id, a.Path)
}

func diagnosticCode(err error) string {
	switch {
	case errors.Is(err, nsid.ErrMalformedPath):
		return discovery.CodeMalformedPath
	case errors.Is(err, ErrInvalidTagFormat):
		return discovery.CodeInvalidTag
	case errors.Is(err, ErrInvalidAdvancement):
		return discovery.CodeInvalidAdvancement
	default:
		return discovery.CodeReadFailed
	}
}
