// Package domain holds the error values shared across refgen's packages.
package domain

import "go.trai.ch/zerr"

var (
	// ErrConfiguration is returned when required project or manifest metadata is missing or malformed.
	ErrConfiguration = zerr.New("invalid project configuration")

	// ErrUnsupportedPlatform is returned when reference assemblies cannot be located on this machine.
	ErrUnsupportedPlatform = zerr.New("reference assemblies are not available on this platform")

	// ErrUnknownFramework is returned when a framework has no embedded framework list.
	ErrUnknownFramework = zerr.New("no framework list for framework")

	// ErrUnsupportedFramework is returned for frameworks that are neither package based nor a known portable profile.
	ErrUnsupportedFramework = zerr.New("framework is not recognized as a portable or package based framework")

	// ErrMissingTarget is returned when a lock file has no target for any candidate moniker.
	ErrMissingTarget = zerr.New("project.lock.json is missing a target")

	// ErrInvalidAssembly is returned when a file is not a managed assembly.
	ErrInvalidAssembly = zerr.New("not a valid managed assembly")

	// ErrMscorlibNotSupported is returned when the resolved packages include mscorlib.
	ErrMscorlibNotSupported = zerr.New("mscorlib-based projects are not supported")
)
