// Package deps stages the runtime library the host executable loads at startup
// (raylib.dll for the stock layout) by copying the toolchain's vendored build
// into the output directory.
package deps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"

	"git.home.luguber.info/inful/hotbuild/internal/config"
	ferrors "git.home.luguber.info/inful/hotbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// HintKey is the error context key holding operator instructions.
const HintKey = "hint"

// RootResolver locates the toolchain installation.
type RootResolver interface {
	Root(ctx context.Context) (string, bool)
}

// Outcome describes what Stage did.
type Outcome struct {
	Path    string
	Source  string // empty when the dependency was already present
	Present bool
}

// Stager copies a vendored runtime dependency into the output directory.
type Stager struct {
	OutputDir  string
	Name       string
	VendorPath string
	Toolchain  string
	Resolver   RootResolver
	// BeforeCopy, when set, is called with the source path right before copying.
	BeforeCopy func(source string)
}

// NewStager builds a Stager from configuration.
func NewStager(cfg *config.Config, resolver RootResolver) *Stager {
	return &Stager{
		OutputDir:  cfg.Output.Directory,
		Name:       cfg.Dependency.Name,
		VendorPath: cfg.Dependency.VendorPath,
		Toolchain:  cfg.Compiler,
		Resolver:   resolver,
	}
}

// Target is where the dependency is staged.
func (s *Stager) Target() string {
	return filepath.Join(s.OutputDir, s.Name)
}

// Stage ensures the dependency exists in the output directory. When it is
// already there the toolchain is never queried.
func (s *Stager) Stage(ctx context.Context) (Outcome, error) {
	target := s.Target()
	if _, err := os.Stat(target); err == nil {
		slog.Debug("Runtime dependency already staged", logfields.Path(target))
		return Outcome{Path: target, Present: true}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Outcome{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to inspect runtime dependency").
			Fatal().
			WithContext("path", target).
			Build()
	}

	root, ok := s.Resolver.Root(ctx)
	if !ok {
		return Outcome{}, ferrors.ToolchainError(fmt.Sprintf("Could not determine %s root directory", s.Toolchain)).
			WithContext("compiler", s.Toolchain).
			Build()
	}

	source := filepath.Join(root, filepath.FromSlash(s.VendorPath))
	if _, err := os.Stat(source); err != nil {
		hint := fmt.Sprintf("Please copy %s from <your_%s_compiler>/%s to %s", s.Name, s.Toolchain, s.VendorPath, s.OutputDir)
		return Outcome{}, ferrors.WrapError(err, ferrors.CategoryDependency, fmt.Sprintf("%s not found in toolchain", s.Name)).
			Fatal().
			WithContext("source", source).
			WithContext(HintKey, hint).
			Build()
	}

	if s.BeforeCopy != nil {
		s.BeforeCopy(source)
	}
	if err := copy.Copy(source, target, copy.Options{PreserveTimes: true}); err != nil {
		return Outcome{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, fmt.Sprintf("failed to copy %s", s.Name)).
			Fatal().
			WithContext("source", source).
			WithContext("path", target).
			Build()
	}
	slog.Info("Staged runtime dependency", logfields.Path(target), slog.String("source", source))
	return Outcome{Path: target, Source: source}, nil
}
