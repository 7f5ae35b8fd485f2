package dispatchers

import (
	"context"
	"html"
	"strconv"
	"time"

	"galaxy-datagen/internal/auditlogs"
	"galaxy-datagen/internal/launchers"
	"galaxy-datagen/internal/models"
	"galaxy-datagen/internal/shared/loggers"
	"galaxy-datagen/internal/shared/metrics"
	"galaxy-datagen/internal/shared/svcerrors"
)

// DispatchService validates a generate request, records it in the audit log
// and starts the generator for valid requests.
//
// Every call appends exactly one audit line, whatever the outcome:
//   - valid count: "<n>" is audited, then the generator is launched once
//     with --output <n>.csv --num_particles <n>;
//   - invalid count: "invalid request" is audited and DSP_1000 returned;
//   - audit write failure: DSP_9000 is returned and nothing is launched;
//   - launch failure: the line stays audited and DSP_9001 is returned.
//
//go:generate mockgen -source=dispatch_service.go -destination=./mocks/dispatch_service_mock.go -package=mocks
type DispatchService interface {
	Dispatch(ctx context.Context, req *models.DispatchRequest) (*models.DispatchResult, error)
}

type dispatchService struct {
	auditLog auditlogs.AuditLog
	launcher launchers.Launcher
	now      func() time.Time
}

func NewDispatchService(auditLog auditlogs.AuditLog, launcher launchers.Launcher, now func() time.Time) DispatchService {
	if now == nil {
		now = time.Now
	}
	return &dispatchService{
		auditLog: auditLog,
		launcher: launcher,
		now:      now,
	}
}

func (s *dispatchService) Dispatch(ctx context.Context, req *models.DispatchRequest) (*models.DispatchResult, error) {
	logger := loggers.Ctx(ctx)

	// A client hanging up must not cost the audit line or an accepted launch.
	ctx = context.WithoutCancel(ctx)

	escaped := html.EscapeString(req.RawNumParticles)
	clientAddress := ResolveClientAddress(req.ForwardedFor, req.RemoteAddr)
	numParticles, valid := ParseParticleCount(escaped)

	if !valid {
		entry := models.NewRejectedAuditEntry(s.now(), req.AuthUser, clientAddress)
		if err := s.auditLog.Append(ctx, entry); err != nil {
			return nil, s.failed(errInternalAuditAppendFailed(err))
		}

		svcErr := errInvalidParticleCount()
		metricDispatchTotal.WithLabelValues(outcomeRejected, svcErr.Code).Inc()
		logger.Debug().
			Str(loggers.FieldAuthUser, req.AuthUser).
			Str(loggers.FieldClientAddress, clientAddress).
			Int(loggers.FieldNumParticles, numParticles).
			Msg("request rejected")
		return nil, svcErr
	}

	entry := models.NewDispatchedAuditEntry(s.now(), req.AuthUser, clientAddress, numParticles)
	if err := s.auditLog.Append(ctx, entry); err != nil {
		return nil, s.failed(errInternalAuditAppendFailed(err))
	}

	outputFile := OutputFileName(numParticles)
	launch, err := s.launcher.Launch(ctx, GeneratorArgs(numParticles))
	if err != nil {
		return nil, s.failed(errInternalGeneratorLaunchFailed(err))
	}

	metricDispatchTotal.WithLabelValues(outcomeDispatched, metrics.ValueNoError).Inc()
	metricDispatchedParticles.WithLabelValues().Observe(float64(numParticles))
	logger.Info().
		Str(loggers.FieldAuthUser, req.AuthUser).
		Str(loggers.FieldClientAddress, clientAddress).
		Int(loggers.FieldNumParticles, numParticles).
		Int(loggers.FieldPID, launch.PID).
		Str(loggers.FieldCommandLine, launch.CommandLine).
		Msg("generator dispatched")

	return &models.DispatchResult{
		NumParticles:  numParticles,
		OutputFile:    outputFile,
		ClientAddress: clientAddress,
		PID:           launch.PID,
	}, nil
}

func (s *dispatchService) failed(svcErr *svcerrors.ServiceError) error {
	metricDispatchTotal.WithLabelValues(outcomeFailed, svcErr.Code).Inc()
	return svcErr
}

// OutputFileName is the data-set file the generator writes for n particles.
func OutputFileName(numParticles int) string {
	return strconv.Itoa(numParticles) + ".csv"
}

// GeneratorArgs builds the generator arguments from a validated count; no
// caller-supplied text ever reaches the command line.
func GeneratorArgs(numParticles int) []string {
	n := strconv.Itoa(numParticles)
	return []string{"--output", OutputFileName(numParticles), "--num_particles", n}
}
