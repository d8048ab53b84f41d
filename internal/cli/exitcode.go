package cli

import (
	"context"
	stderrors "errors"

	"github.com/glorpus-work/ggufy/pkg/errors"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitNetwork     = 5
	ExitIntegrity   = 6
	ExitStorage     = 7
	ExitInterrupted = 130
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	is := func(targets ...error) bool {
		for _, t := range targets {
			if stderrors.Is(err, t) {
				return true
			}
		}
		return false
	}

	switch {
	case err == nil:
		return ExitOK
	case is(context.Canceled):
		return ExitInterrupted
	case is(errors.ErrInvalidArguments, errors.ErrInvalidReferenceFormat, errors.ErrNoToken,
		errors.ErrUnknownConfigKey, errors.ErrConfigValidation, errors.ErrInvalidLogLevel,
		errors.ErrInvalidLatestOrder, errors.ErrHTTPTimeoutNegative, errors.ErrLockTimeoutNegative,
		errors.ErrInvalidEndpoint):
		return ExitUsage
	case is(errors.ErrRepositoryNotFound, errors.ErrArtifactNotFound, errors.ErrNoArtifactFound):
		return ExitNotFound
	case is(errors.ErrNetwork):
		return ExitNetwork
	case is(errors.ErrIntegrityMismatch):
		return ExitIntegrity
	case is(errors.ErrLockTimeout, errors.ErrInvalidPath, errors.ErrCacheDirectory, errors.ErrConfigDirectory,
		errors.ErrMetadataWrite, errors.ErrConfigFileCreate, errors.ErrConfigFileRename):
		return ExitStorage
	default:
		return ExitGeneral
	}
}
