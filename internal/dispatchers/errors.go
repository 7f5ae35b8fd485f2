package dispatchers

import (
	"fmt"

	"galaxy-datagen/internal/shared/svcerrors"
)

// DispatchService errors
const (
	codeInvalidParticleCount = "DSP_1000"

	codeInternalAuditAppendFailed     = "DSP_9000"
	codeInternalGeneratorLaunchFailed = "DSP_9001"
)

// errInvalidParticleCount returns an error for a num_particles value outside the accepted range.
func errInvalidParticleCount() *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidParticleCount,
		fmt.Sprintf("num_particles must be an integer between %d and %d", MinParticles, MaxParticles), nil)
}

// errInternalAuditAppendFailed returns an error when the audit line could not be written.
func errInternalAuditAppendFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalAuditAppendFailed, fmt.Errorf("auditAppendFailed: %w", cause))
}

// errInternalGeneratorLaunchFailed returns an error when the generator process could not be started.
func errInternalGeneratorLaunchFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalGeneratorLaunchFailed, fmt.Errorf("generatorLaunchFailed: %w", cause))
}
