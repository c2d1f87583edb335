// Package refs resolves the flake references users type on the command line
// into an input name and a pinned URL. Three shapes are accepted: scheme
// references like `github:NixOS/nixpkgs`, FlakeHub shorthand like
// `NixOS/nixpkgs` or `NixOS/nixpkgs/0.2305`, and full URLs.
package refs

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ProjectResolver resolves a FlakeHub org/project pair, optionally pinned
// to a version requirement, into the project's canonical name and its
// release URL.
type ProjectResolver interface {
	ProjectAndURL(ctx context.Context, org, project, version string) (string, string, error)
}

// Input is a resolved flake reference: the input name to declare and the
// URL to pin it to.
type Input struct {
	Name string
	URL  string
}

// Resolve turns flakeRef into an Input. inputName overrides the inferred
// name; for full URLs, where no part of the path can be assumed to be a
// name, it is required.
func Resolve(ctx context.Context, resolver ProjectResolver, flakeRef, inputName string) (Input, error) {
	flakeRef = strings.TrimRight(flakeRef, "/")

	parsed, err := url.Parse(flakeRef)
	if err != nil {
		return Input{}, fmt.Errorf("failed to parse flake reference %q: %w", flakeRef, err)
	}

	switch {
	// A reference like `github:NixOS/nixpkgs` or `fh:NixOS/nixpkgs`.
	case parsed.Scheme != "" && parsed.Host == "":
		return resolveSchemeRef(parsed, inputName)

	// FlakeHub shorthand like `NixOS/nixpkgs` or `NixOS/nixpkgs/0.2305`.
	case parsed.Scheme == "":
		return resolveShorthand(ctx, resolver, flakeRef, inputName)

	// A full URL like `https://flakehub.com/f/NixOS/nixpkgs/*.tar.gz`.
	default:
		if inputName == "" {
			return Input{}, fmt.Errorf("cannot infer an input name for %q; please specify one with the `--input-name` flag", flakeRef)
		}
		return Input{Name: inputName, URL: parsed.String()}, nil
	}
}

// resolveSchemeRef takes the second path segment as the input name: in
// `github:NixOS/nixpkgs` the first segment is the org.
func resolveSchemeRef(parsed *url.URL, inputName string) (Input, error) {
	if inputName != "" {
		return Input{Name: inputName, URL: parsed.String()}, nil
	}

	path := parsed.Opaque
	if path == "" {
		path = parsed.Path
	}
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[1] == "" {
		return Input{}, fmt.Errorf("cannot infer an input name for %q; please specify one with the `--input-name` flag", parsed.String())
	}
	return Input{Name: parts[1], URL: parsed.String()}, nil
}

func resolveShorthand(ctx context.Context, resolver ProjectResolver, flakeRef, inputName string) (Input, error) {
	var org, project, version string
	switch parts := strings.Split(flakeRef, "/"); len(parts) {
	case 2:
		org, project = parts[0], parts[1]
	case 3:
		org, project = parts[0], parts[1]
		version = strings.TrimSuffix(parts[2], ".tar.gz")
		version = strings.TrimPrefix(version, "v")
		if _, err := semver.NewConstraint(version); err != nil {
			return Input{}, fmt.Errorf("version %q was not a valid SemVer version requirement", version)
		}
	default:
		return Input{}, fmt.Errorf("flake reference %q did not match the expected format of `org/project` or `org/project/version`", flakeRef)
	}

	canonical, downloadURL, err := resolver.ProjectAndURL(ctx, org, project, version)
	if err != nil {
		return Input{}, fmt.Errorf("failed to resolve %s/%s: %w", org, project, err)
	}

	downloadURL, err = stripTarballSuffix(downloadURL)
	if err != nil {
		return Input{}, err
	}

	if inputName == "" {
		inputName = canonical
	}
	return Input{Name: inputName, URL: downloadURL}, nil
}

// stripTarballSuffix drops a trailing `.tar.gz` from the URL's path, turning
// a concrete tarball link into the prettier rolling reference.
func stripTarballSuffix(downloadURL string) (string, error) {
	parsed, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse download URL %q: %w", downloadURL, err)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, ".tar.gz")
	return parsed.String(), nil
}
